package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/storage"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "ingested", "removed".
type EventCallback func(kind string, item models.MediaItem)

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled, so media files dropped directly
// into the library directory show up in the catalog without going through
// the upload API. It calls cb (if non-nil) after each catalog mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Remove and rename events trigger a debounced reconciliation pass
// that clears records whose files no longer exist on disk.
func Watch(ctx context.Context, db MediaCatalog, store storage.Provider, libraryRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, libraryRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", libraryRoot))

	// reconcileTimer debounces reconciliation after removes/renames.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and ingest their contents.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					ingestNewDir(db, store, libraryRoot, absPath, logger, cb)
					continue
				}
			}

			// Skip the atomic-write temp files storage.FS creates.
			if strings.HasPrefix(filepath.Base(absPath), ".") {
				continue
			}

			rel, relErr := filepath.Rel(libraryRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if _, _, isMedia := models.KindForPath(rel); !isMedia {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if _, getErr := db.GetByFilePath(rel); getErr == nil {
					continue // already catalogued, e.g. via the upload API
				}
				meta, statErr := store.Stat(rel)
				if statErr != nil {
					logger.Warn("watcher: stat failed", slog.String("path", rel), slog.String("error", statErr.Error()))
					continue
				}
				item, ingErr := ingestFile(db, meta)
				if ingErr != nil {
					logger.Warn("watcher: ingest failed", slog.String("path", rel), slog.String("error", ingErr.Error()))
					continue
				}
				logger.Debug("watcher: ingested", slog.String("path", rel), slog.String("id", item.ID))
				if cb != nil {
					cb("ingested", item)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create event if it stays within a
				// watched dir. Either way the stale record is picked up by
				// the debounced reconciliation pass.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes catalog records whose files vanished and registers
// on-disk media files the catalog does not know about.
func reconcile(db MediaCatalog, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	known, err := db.AllFilePaths()
	if err != nil {
		logger.Warn("reconcile: all file paths failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]models.FileMetadata, len(metas))
	for _, m := range metas {
		disk[m.Path] = m
	}

	for p, id := range known {
		if _, ok := disk[p]; ok {
			continue
		}
		item, getErr := db.Get(id)
		if delErr := db.Delete(id); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			if cb != nil && getErr == nil {
				cb("removed", *item)
			}
		}
	}

	for p, m := range disk {
		if _, ok := known[p]; ok {
			continue
		}
		if _, _, isMedia := models.KindForPath(p); !isMedia {
			continue
		}
		if item, ingErr := ingestFile(db, m); ingErr == nil {
			logger.Debug("reconcile: ingested new", slog.String("path", p))
			if cb != nil {
				cb("ingested", item)
			}
		}
	}
}

// ingestNewDir registers any media files found in a newly created directory.
func ingestNewDir(db MediaCatalog, store storage.Provider, libraryRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(libraryRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if _, _, isMedia := models.KindForPath(rel); !isMedia {
			return nil
		}
		if _, getErr := db.GetByFilePath(rel); getErr == nil {
			return nil
		}
		meta, statErr := store.Stat(rel)
		if statErr != nil {
			return nil
		}
		if item, ingErr := ingestFile(db, meta); ingErr == nil {
			logger.Debug("watcher: ingested from new dir", slog.String("path", rel))
			if cb != nil {
				cb("ingested", item)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
