package catalog

import "github.com/ahlgren/medley/internal/models"

// MediaCatalog defines the interface for catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type MediaCatalog interface {
	Insert(item models.MediaItem) error
	Get(id string) (*models.MediaItem, error)
	GetByFilePath(path string) (*models.MediaItem, error)
	ListMedia(kind models.Kind) ([]models.MediaItem, error)
	AllFilePaths() (map[string]string, error)
	Delete(id string) error
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies MediaCatalog at compile time.
var _ MediaCatalog = (*DB)(nil)
