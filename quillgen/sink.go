package quillgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives generated file content. Implementations must be safe for
// concurrent calls; the build pipeline may generate services in parallel.
type Sink interface {
	// WriteFile writes content at a slash-separated relative path.
	WriteFile(path string, content []byte) error
}

// FilesystemSink writes generated files under a root directory, creating
// parent directories as needed. Writes are atomic (temp file + rename) so a
// crashed generation run never leaves a half-written binding on disk.
type FilesystemSink struct {
	Root string
}

// NewFilesystemSink creates a sink rooted at root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root}
}

func (s *FilesystemSink) WriteFile(path string, content []byte) error {
	if err := validateSinkPath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quill-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if writeErr != nil {
			return fmt.Errorf("write temp file: %w", writeErr)
		}
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// MemorySink stores generated files in memory, for tests and dry runs.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(path string, content []byte) error {
	if err := validateSinkPath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = cp
	return nil
}

// File returns the content written at path, if any.
func (s *MemorySink) File(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[path]
	return content, ok
}

// validateSinkPath rejects absolute paths and path traversal.
func validateSinkPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(path, "/") || filepath.IsAbs(path) {
		return fmt.Errorf("path must be relative")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fmt.Errorf("path must not contain %q", "..")
		}
	}
	return nil
}
