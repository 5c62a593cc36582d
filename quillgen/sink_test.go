package quillgen

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemSinkWrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewFilesystemSink(dir)

	content := []byte("package rpc\n")
	if err := sink.WriteFile("gen/test_api.quill.go", content); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "gen", "test_api.quill.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "gen"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in output dir: %v", entries)
	}
}

func TestFilesystemSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewFilesystemSink(dir)

	if err := sink.WriteFile("a.go", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteFile("a.go", []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "a.go"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestSinkRejectsBadPaths(t *testing.T) {
	for _, sink := range []Sink{NewFilesystemSink(t.TempDir()), NewMemorySink()} {
		for _, path := range []string{"", "/abs/path.go", "../escape.go", "a/../../b.go"} {
			if err := sink.WriteFile(path, []byte("x")); err == nil {
				t.Errorf("%T accepted bad path %q", sink, path)
			}
		}
	}
}

func TestMemorySinkCopiesContent(t *testing.T) {
	sink := NewMemorySink()
	content := []byte("original")
	if err := sink.WriteFile("a.go", content); err != nil {
		t.Fatal(err)
	}
	content[0] = 'X'

	got, ok := sink.File("a.go")
	if !ok {
		t.Fatal("file not found")
	}
	if string(got) != "original" {
		t.Errorf("content = %q, want original (sink must copy)", got)
	}

	if _, ok := sink.File("missing.go"); ok {
		t.Error("File reported a missing path as present")
	}
}
