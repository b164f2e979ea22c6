package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/ahlgren/medley/internal/apperr"
	"github.com/ahlgren/medley/internal/mediaservice"
)

// maxUploadBytes bounds the whole multipart body. Slightly above the
// video size cap to leave room for the form fields.
const maxUploadBytes = 101 << 20

// UploadTrack handles POST /api/upload (multipart/form-data with
// "file", "title", and "artist" fields).
func (h *Handler) UploadTrack(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(in mediaservice.UploadInput) (*UploadResponse, error) {
		item, err := h.svc.UploadTrack(r.Context(), in)
		if err != nil {
			return nil, err
		}
		return &UploadResponse{Success: true, Track: item}, nil
	})
}

// UploadVideo handles POST /api/videos/upload. Videos are validated
// against a mime type allow-list and a size cap.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(in mediaservice.UploadInput) (*UploadResponse, error) {
		item, err := h.svc.UploadVideo(r.Context(), in)
		if err != nil {
			return nil, err
		}
		return &UploadResponse{Success: true, Video: item}, nil
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, save func(mediaservice.UploadInput) (*UploadResponse, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	// Small memory budget: large files spill to temp files.
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Error: "file too large or invalid multipart"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Error: "missing required fields"})
		return
	}
	defer file.Close()

	in := mediaservice.UploadInput{
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		Filename: header.Filename,
		MimeType: contentType(header),
		Size:     header.Size,
		Data:     file,
	}

	resp, err := save(in)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, UploadResponse{Error: err.Error()})
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, UploadResponse{Error: "file already exists"})
		default:
			slog.Error("upload failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, UploadResponse{Error: "failed to store upload"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// contentType extracts the declared mime type of the uploaded part.
func contentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}
