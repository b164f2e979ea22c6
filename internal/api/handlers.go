package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ahlgren/medley/internal/apperr"
	"github.com/ahlgren/medley/internal/mediaservice"
	"github.com/ahlgren/medley/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *mediaservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *mediaservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListTracks handles GET /api/tracks.
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTracks(r.Context())
	if err != nil {
		slog.Error("list tracks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListVideos handles GET /api/videos.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListVideos(r.Context())
	if err != nil {
		slog.Error("list videos failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListMedia handles GET /api/media: the merged audio+video corpus.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context())
	if err != nil {
		slog.Error("list media failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, MediaListResponse{Media: items, Total: len(items)})
}

// GetMedia handles GET /api/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get media failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteMedia handles DELETE /api/media/{id}: removes the record and its file.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete media failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SmartSearch handles POST /api/search/smart.
//
// An empty or all-whitespace query returns an empty array with success
// status. Unknown type or filter values are rejected with 400 rather than
// silently coerced; an unset type defaults to hybrid.
func (h *Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	results, err := h.svc.Search(r.Context(), req.toQuery())
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("smart search failed", slog.String("query", req.Query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("search failed"))
		return
	}
	writeJSON(w, http.StatusOK, toResultItems(results))
}

// DownloadTrack handles GET /api/download/{id}: streams an audio file as
// an attachment named after its title.
func (h *Handler) DownloadTrack(w http.ResponseWriter, r *http.Request) {
	item, rc, ok := h.openForDownload(w, r, models.KindAudio)
	if !ok {
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.Title+".mp3"))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("stream track failed", slog.String("id", item.ID), slog.String("error", err.Error()))
	}
}

// DownloadVideo handles GET /api/videos/download/{id}.
func (h *Handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	item, rc, ok := h.openForDownload(w, r, models.KindVideo)
	if !ok {
		return
	}
	defer rc.Close()

	mimeType := item.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	w.Header().Set("Content-Type", mimeType)
	if item.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(item.FileSize, 10))
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", item.Title+"."+models.VideoExtension(item.MimeType)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("stream video failed", slog.String("id", item.ID), slog.String("error", err.Error()))
	}
}

// openForDownload fetches the record, verifies its kind matches the
// endpoint, and opens its blob. Responses for failure cases are written
// here; ok reports whether the caller should proceed.
func (h *Handler) openForDownload(w http.ResponseWriter, r *http.Request, kind models.Kind) (*models.MediaItem, io.ReadSeekCloser, bool) {
	id := chi.URLParam(r, "id")
	item, rc, err := h.svc.OpenMedia(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("open media failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return nil, nil, false
	}
	if item.Kind != kind {
		rc.Close()
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return nil, nil, false
	}
	return item, rc, true
}
