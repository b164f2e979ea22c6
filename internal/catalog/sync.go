package catalog

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/storage"
)

// Sync walks the library directory and brings the catalog up to date:
//   - media files unknown to the catalog are registered with metadata
//     derived from the file name
//   - records whose file no longer exists on disk are removed
//
// Files with unrecognized extensions are left alone.
func Sync(db MediaCatalog, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	known, err := db.AllFilePaths()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if _, _, ok := models.KindForPath(m.Path); !ok {
			continue
		}
		disk[m.Path] = struct{}{}

		if _, ok := known[m.Path]; ok {
			continue
		}
		item, err := ingestFile(db, m)
		if err != nil {
			logger.Warn("sync: ingest failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: ingested", slog.String("path", m.Path), slog.String("id", item.ID))
		}
	}

	// Remove stale records.
	for p, id := range known {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// ingestFile registers an on-disk media file under a fresh id. Title comes
// from the file name stem; the uploader is unknown for dropped-in files.
func ingestFile(db MediaCatalog, meta models.FileMetadata) (models.MediaItem, error) {
	kind, mimeType, ok := models.KindForPath(meta.Path)
	if !ok {
		return models.MediaItem{}, fmt.Errorf("catalog: not a media file: %s", meta.Path)
	}
	item := models.MediaItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     models.TitleForPath(meta.Path),
		Artist:    "Unknown Artist",
		FilePath:  meta.Path,
		FileSize:  meta.Size,
		MimeType:  mimeType,
		CreatedAt: meta.UpdatedAt,
	}
	if err := db.Insert(item); err != nil {
		return models.MediaItem{}, err
	}
	return item, nil
}
