package injector

import (
	"fmt"
	"os"
)

// FileSystem is the file access the injector needs
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the whole content of path
	WriteFile(path string, data []byte) error
}

// OSFileSystem reads and writes the local disk
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile keeps the permissions of an existing file
func (OSFileSystem) WriteFile(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, data, perm)
}

// IOError is a read or write failure; it aborts the remaining insertions of
// the file it names
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
