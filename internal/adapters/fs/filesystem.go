// Package fs provides the operating system adapters for reading and hashing files.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/core/ppath"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on top of the os package.
// It accepts and returns portable paths.
type FileSystem struct{}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Stat returns the file information of path, following symlinks.
func (f *FileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(ppath.FromPortable(path))
}

// Exists reports whether anything exists at path.
func (f *FileSystem) Exists(path string) bool {
	_, err := os.Stat(ppath.FromPortable(path))
	return err == nil
}

// ReadFile returns the content of the file at path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(ppath.FromPortable(path)) //nolint:gosec // Path is controlled by caller
}

// Realpath resolves every symlink in path. A trailing slash is preserved.
func (f *FileSystem) Realpath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(ppath.FromPortable(path))
	if err != nil {
		return "", err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	portable := ppath.ToPortable(resolved)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(portable, "/") {
		portable += "/"
	}
	return portable, nil
}
