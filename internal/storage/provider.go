// Package storage defines the media library file-system abstraction.
package storage

import (
	"io"

	"github.com/ahlgren/medley/internal/models"
)

// Provider is the interface for media blob operations. All paths are
// relative to the library root.
type Provider interface {
	// List walks dir and returns metadata for every regular file under it.
	List(dir string) ([]models.FileMetadata, error)
	// Open returns a reader over the blob at path. The caller must close it.
	Open(path string) (io.ReadSeekCloser, error)
	// Stat returns metadata for the blob at path.
	Stat(path string) (models.FileMetadata, error)
	// Save atomically streams r to path, returning the byte count written.
	Save(path string, r io.Reader) (int64, error)
	// Delete removes the blob at path.
	Delete(path string) error
}
