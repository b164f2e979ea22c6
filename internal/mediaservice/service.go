// Package mediaservice coordinates blob storage, the SQLite catalog, and
// the search engine behind the HTTP and MCP surfaces.
package mediaservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahlgren/medley/internal/apperr"
	"github.com/ahlgren/medley/internal/catalog"
	"github.com/ahlgren/medley/internal/checksum"
	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/search"
	"github.com/ahlgren/medley/internal/storage"
)

// Upload destinations inside the library, mirroring the directory layout
// the web UI links against.
const (
	audioDir = "uploads"
	videoDir = "uploads/videos"
)

// EventFunc receives library change notifications ("added", "removed").
type EventFunc func(kind string, item models.MediaItem)

// UploadInput carries one multipart upload.
type UploadInput struct {
	Title    string
	Artist   string
	Filename string
	MimeType string
	Size     int64
	Data     io.Reader
}

// Service coordinates storage, catalog, and search engine operations.
type Service struct {
	store         storage.Provider
	cat           catalog.MediaCatalog
	engine        *search.Engine
	maxVideoBytes int64
	notify        EventFunc
}

// NewService creates a new media service. maxVideoBytes caps video
// uploads; zero disables the cap.
func NewService(store storage.Provider, cat catalog.MediaCatalog, engine *search.Engine, maxVideoBytes int64) *Service {
	return &Service{store: store, cat: cat, engine: engine, maxVideoBytes: maxVideoBytes}
}

// SetEventFunc registers a library change listener. Must be called before
// the service starts handling requests.
func (s *Service) SetEventFunc(fn EventFunc) {
	s.notify = fn
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename strips directories and replaces characters that are
// unsafe in a library path.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}

// UploadTrack stores an audio upload and registers it in the catalog.
func (s *Service) UploadTrack(_ context.Context, in UploadInput) (*models.MediaItem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	mimeType := in.MimeType
	if mimeType == "" {
		if _, m, ok := models.KindForPath(in.Filename); ok {
			mimeType = m
		}
	}
	return s.saveUpload(in, models.KindAudio, path.Join(audioDir, sanitizeFilename(in.Filename)), mimeType)
}

// UploadVideo stores a video upload. Videos are validated against the
// mime type allow-list and the configured size cap before any bytes are
// written.
func (s *Service) UploadVideo(_ context.Context, in UploadInput) (*models.MediaItem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !models.AllowedVideoMimeTypes[in.MimeType] {
		return nil, fmt.Errorf("%w: invalid file type %q, only MP4, MPEG, MOV, WebM, and OGG videos are allowed",
			apperr.ErrInvalidInput, in.MimeType)
	}
	if s.maxVideoBytes > 0 && in.Size > s.maxVideoBytes {
		return nil, fmt.Errorf("%w: file too large, maximum size is %d bytes", apperr.ErrInvalidInput, s.maxVideoBytes)
	}
	// Timestamped names keep repeated uploads of the same file distinct.
	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeFilename(in.Filename))
	return s.saveUpload(in, models.KindVideo, path.Join(videoDir, name), in.MimeType)
}

func validateInput(in UploadInput) error {
	if in.Filename == "" || in.Title == "" || in.Artist == "" {
		return fmt.Errorf("%w: missing required fields", apperr.ErrInvalidInput)
	}
	if in.Data == nil {
		return fmt.Errorf("%w: missing file content", apperr.ErrInvalidInput)
	}
	return nil
}

// saveUpload streams the payload to disk, checksumming as it goes, then
// inserts the catalog record.
func (s *Service) saveUpload(in UploadInput, kind models.Kind, filePath, mimeType string) (*models.MediaItem, error) {
	if _, err := s.cat.GetByFilePath(filePath); err == nil {
		return nil, fmt.Errorf("file already exists: %s: %w", filePath, apperr.ErrAlreadyExists)
	}

	digest := checksum.NewWriter()
	written, err := s.store.Save(filePath, io.TeeReader(in.Data, digest))
	if err != nil {
		return nil, err
	}

	item := models.MediaItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     in.Title,
		Artist:    in.Artist,
		FilePath:  filePath,
		FileSize:  written,
		MimeType:  mimeType,
		Checksum:  digest.Sum(),
		CreatedAt: time.Now(),
	}
	if err := s.cat.Insert(item); err != nil {
		_ = s.store.Delete(filePath)
		return nil, err
	}
	if s.notify != nil {
		s.notify("added", item)
	}
	return &item, nil
}

// ListTracks returns all audio records, newest first.
func (s *Service) ListTracks(_ context.Context) ([]models.MediaItem, error) {
	return s.listNonNil(models.KindAudio)
}

// ListVideos returns all video records, newest first.
func (s *Service) ListVideos(_ context.Context) ([]models.MediaItem, error) {
	return s.listNonNil(models.KindVideo)
}

// ListAll returns the merged corpus (audio and video), newest first.
func (s *Service) ListAll(_ context.Context) ([]models.MediaItem, error) {
	return s.listNonNil("")
}

func (s *Service) listNonNil(kind models.Kind) ([]models.MediaItem, error) {
	items, err := s.cat.ListMedia(kind)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	return items, nil
}

// Get returns a single media record by id.
func (s *Service) Get(_ context.Context, id string) (*models.MediaItem, error) {
	return s.cat.Get(id)
}

// OpenMedia returns the record and an open reader over its blob. The
// caller must close the reader.
func (s *Service) OpenMedia(_ context.Context, id string) (*models.MediaItem, io.ReadSeekCloser, error) {
	item, err := s.cat.Get(id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(item.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("media file missing: %s: %w", item.FilePath, apperr.ErrNotFound)
		}
		return nil, nil, err
	}
	return item, rc, nil
}

// Delete removes the record and its blob.
func (s *Service) Delete(_ context.Context, id string) error {
	item, err := s.cat.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(item.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.cat.Delete(id); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify("removed", *item)
	}
	return nil
}

// Search validates the query, loads the corpus snapshot from the catalog,
// and runs the relevance engine over it. A catalog failure surfaces to
// the caller unretried.
func (s *Service) Search(_ context.Context, q search.Query) ([]search.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidInput, err)
	}
	corpus, err := s.cat.ListMedia("")
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	results := s.engine.Search(corpus, q)
	if results == nil {
		results = []search.Result{}
	}
	return results, nil
}

// Stats reports corpus size, used by health and MCP tooling.
func (s *Service) Stats(_ context.Context) (int, error) {
	return s.cat.Count()
}
