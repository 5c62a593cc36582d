package quillgen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"
)

// DefaultRuntimeImport is the import path of the runtime package the
// generated code depends on.
const DefaultRuntimeImport = "github.com/quillrpc/quill"

// Options configures one generation run.
type Options struct {
	// PackageName is the package clause of the generated file. Required.
	PackageName string
	// RuntimeImport overrides the runtime import path. Rarely needed outside
	// the runtime's own tests; defaults to DefaultRuntimeImport.
	RuntimeImport string
	// Imports maps each package alias used in qualified type names (the "pb"
	// in "pb.PingRequest") to the import path that provides it. Every alias
	// the descriptor references must be mapped, or generation fails.
	Imports map[string]string
}

// Generate turns a service descriptor into Go source defining the five
// binding artifacts: the path-prefix constant, the server capability
// interface, its delegation wrapper, the router constructor, and the client
// interface with its implementation.
//
// Generate is pure and deterministic: it holds no state between calls and
// identical input always yields byte-identical output, so regenerating
// bindings never produces spurious diffs. A malformed descriptor fails
// generation; invalid code is never emitted.
func Generate(svc *ServiceDescriptor, opts Options) ([]byte, error) {
	if err := svc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	if opts.PackageName == "" {
		return nil, fmt.Errorf("options: package name is required")
	}
	runtimeImport := opts.RuntimeImport
	if runtimeImport == "" {
		runtimeImport = DefaultRuntimeImport
	}
	messageImports, err := qualifiedImports(svc, opts.Imports)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	p := func(format string, args ...any) {
		fmt.Fprintf(&buf, format+"\n", args...)
	}

	p("// Code generated by quill. DO NOT EDIT.")
	p("// source: service %s", svc.FQN())
	p("")
	p("package %s", opts.PackageName)
	p("")
	p("import (")
	p("\t%q", "context")
	p("")
	p("\tquill %q", runtimeImport)
	for _, im := range messageImports {
		p("\t%s %q", im.alias, im.path)
	}
	p(")")
	p("")

	// Path prefix constant: the canonical FQN prefix shared by the router
	// constructor and the client, so neither side recomputes it.
	p("// %sPathPrefix is the canonical routing prefix for the %s service.", svc.Name, svc.FQN())
	p("// Every method routes at %sPathPrefix + \"/\" + <wire name>.", svc.Name)
	p("const %sPathPrefix = %q", svc.Name, svc.PathPrefix())
	p("")

	// Server capability interface.
	p("// %s is the server capability contract for the %s service.", svc.Name, svc.FQN())
	p("// Errors returned by its methods cross the dispatch boundary as")
	p("// *quill.Error values; any other error becomes an internal error.")
	p("type %s interface {", svc.Name)
	for _, m := range svc.Methods {
		p("\t%s(ctx context.Context, req *%s) (*%s, error)", m.Name, m.InputType, m.OutputType)
	}
	p("}")
	p("")

	// Delegation wrapper.
	p("// Shared%s lets a single %s implementation back any number of router", svc.Name, svc.Name)
	p("// closures: the wrapper copies freely while every copy forwards to the")
	p("// same implementation. Synchronization of any mutable state stays with")
	p("// the wrapped implementation.")
	p("type Shared%s struct {", svc.Name)
	p("\tImpl %s", svc.Name)
	p("}")
	for _, m := range svc.Methods {
		p("")
		p("func (s Shared%s) %s(ctx context.Context, req *%s) (*%s, error) {", svc.Name, m.Name, m.InputType, m.OutputType)
		p("\treturn s.Impl.%s(ctx, req)", m.Name)
		p("}")
	}
	p("")

	// Router constructor.
	p("// New%sRouter registers every %s method and freezes the router.", svc.Name, svc.FQN())
	p("func New%sRouter(api %s, opts ...quill.RouterOption) (*quill.Router, error) {", svc.Name, svc.Name)
	p("\tb := quill.NewRouterBuilder(opts...)")
	for _, m := range svc.Methods {
		p("\tquill.Route(b, %sPathPrefix+%q, func(ctx context.Context, req *%s) (*%s, error) {", svc.Name, "/"+m.WireName, m.InputType, m.OutputType)
		p("\t\treturn api.%s(ctx, req)", m.Name)
		p("\t})")
	}
	p("\treturn b.Build()")
	p("}")
	p("")

	// Client capability interface.
	p("// %sClient is the client capability contract for the %s service.", svc.Name, svc.FQN())
	p("// Errors returned by its methods are *quill.ClientError values, which")
	p("// distinguish transport, status and decode failures.")
	p("type %sClient interface {", svc.Name)
	for _, m := range svc.Methods {
		p("\t%s(ctx context.Context, req *%s) (*%s, error)", m.Name, m.InputType, m.OutputType)
	}
	p("}")
	p("")

	// Client implementation.
	clientImpl := unexport(svc.Name) + "Client"
	p("type %s struct {", clientImpl)
	p("\tc *quill.Client")
	p("}")
	p("")
	p("// New%sClient returns a %sClient that issues calls through c.", svc.Name, svc.Name)
	p("func New%sClient(c *quill.Client) %sClient {", svc.Name, svc.Name)
	p("\treturn &%s{c: c}", clientImpl)
	p("}")
	for _, m := range svc.Methods {
		p("")
		p("func (x *%s) %s(ctx context.Context, req *%s) (*%s, error) {", clientImpl, m.Name, m.InputType, m.OutputType)
		p("\tout := new(%s)", m.OutputType)
		p("\tif err := x.c.Call(ctx, %sPathPrefix+%q, req, out); err != nil {", svc.Name, "/"+m.WireName)
		p("\t\treturn nil, err")
		p("\t}")
		p("\treturn out, nil")
		p("}")
	}

	// Canonical formatting; a failure here means the emitter produced
	// invalid Go, which must fail generation rather than escape.
	src, err := imports.Process("generated.quill.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

type importSpec struct {
	alias, path string
}

// qualifiedImports resolves every package alias the descriptor's type names
// reference against the configured import mapping, in sorted order. An
// unmapped alias fails generation: the output would reference a package it
// never imports, and invalid code must never escape.
func qualifiedImports(svc *ServiceDescriptor, mapping map[string]string) ([]importSpec, error) {
	seen := make(map[string]bool)
	var aliases []string
	for _, m := range svc.Methods {
		for _, typ := range []string{m.InputType, m.OutputType} {
			i := strings.IndexByte(typ, '.')
			if i < 0 || seen[typ[:i]] {
				continue
			}
			seen[typ[:i]] = true
			aliases = append(aliases, typ[:i])
		}
	}
	sort.Strings(aliases)

	specs := make([]importSpec, 0, len(aliases))
	for _, alias := range aliases {
		if alias == "context" || alias == "quill" {
			return nil, fmt.Errorf("package alias %q collides with a generated import", alias)
		}
		path, ok := mapping[alias]
		if !ok {
			return nil, fmt.Errorf("no import mapping for package %q: qualified type names require an Imports entry", alias)
		}
		specs = append(specs, importSpec{alias: alias, path: path})
	}
	return specs, nil
}

// unexport lowercases the first rune of s.
func unexport(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
