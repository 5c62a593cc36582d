// Command quill generates Go service bindings from a service descriptor.
package main

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/alecthomas/kong"

	"github.com/quillrpc/quill/quillgen"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate Go bindings from a service descriptor."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	Descriptor string            `arg:"" help:"Path to the JSON service descriptor." type:"existingfile"`
	Out        string            `help:"Output directory for generated files." short:"o" default:"."`
	Package    string            `help:"Package name of the generated file." short:"p" default:"rpc"`
	Imports    map[string]string `help:"Import mapping for qualified message types, as alias=path." short:"i"`
}

func (c *GenCmd) Run() error {
	f, err := os.Open(c.Descriptor)
	if err != nil {
		return err
	}
	defer f.Close()

	svc, err := quillgen.LoadDescriptor(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.Descriptor, err)
	}
	src, err := quillgen.Generate(svc, quillgen.Options{PackageName: c.Package, Imports: c.Imports})
	if err != nil {
		return fmt.Errorf("generate %s: %w", svc.FQN(), err)
	}

	name := snakeCase(svc.Name) + ".quill.go"
	sink := quillgen.NewFilesystemSink(c.Out)
	if err := sink.WriteFile(name, src); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", name, len(src))
	return nil
}

// snakeCase converts a Go identifier to snake case for the output file name,
// keeping initialisms together: "TestAPI" becomes "test_api".
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && !unicode.IsUpper(runes[i+1])))
			if startsWord {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("quill"),
		kong.Description("Generate Twirp-style Go service bindings."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
