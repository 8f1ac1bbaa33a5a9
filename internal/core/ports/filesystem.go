package ports

import "io/fs"

// FileSystem is the read-only view of the disk the resolver reads.
// Every path it receives or returns is in portable form.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Stat returns the file information of path, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// Exists reports whether anything exists at path.
	Exists(path string) bool
	// ReadFile returns the content of the file at path.
	ReadFile(path string) ([]byte, error)
	// Realpath resolves every symlink in path.
	Realpath(path string) (string, error)
}
