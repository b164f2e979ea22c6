package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahlgren/medley/internal/mediaservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *mediaservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Listings.
	r.Get("/tracks", h.ListTracks)
	r.Get("/videos", h.ListVideos)
	r.Get("/media", h.ListMedia)
	r.Get("/media/{id}", h.GetMedia)
	r.Delete("/media/{id}", h.DeleteMedia)

	// Smart search.
	r.Post("/search/smart", h.SmartSearch)

	// Uploads.
	r.Post("/upload", h.UploadTrack)
	r.Post("/videos/upload", h.UploadVideo)

	// Downloads.
	r.Get("/download/{id}", h.DownloadTrack)
	r.Get("/videos/download/{id}", h.DownloadVideo)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
