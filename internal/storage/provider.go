// Package storage defines the flat directory abstraction the converter reads
// manuscripts from and writes pages to.
package storage

import "github.com/starford/quire/internal/models"

// Provider is the interface for file operations within a single directory.
type Provider interface {
	// Root returns the absolute path of the directory.
	Root() string
	// List returns the direct entries of the root, tagged file or dir.
	List() ([]models.Entry, error)
	// Read returns the raw bytes of the file name (relative to root).
	Read(name string) ([]byte, error)
	// Write atomically creates or replaces the file name (relative to root).
	Write(name string, content []byte) error
}
