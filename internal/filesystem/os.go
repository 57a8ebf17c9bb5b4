// Package filesystem exposes the operating system filesystem behind small interfaces.
package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements the fetch and listing filesystem needs with os primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}
