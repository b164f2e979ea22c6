package api

import (
	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/search"
)

// SearchRequest is the request body for POST /api/search/smart.
type SearchRequest struct {
	Query   string         `json:"query"`
	Type    string         `json:"type,omitempty"` // "semantic", "keyword", "hybrid"; empty defaults to hybrid
	Filters *SearchFilters `json:"filters,omitempty"`
}

// SearchFilters narrows the search corpus.
type SearchFilters struct {
	MediaType string `json:"mediaType,omitempty"` // "audio", "video", "all"
	DateRange string `json:"dateRange,omitempty"` // "today", "week", "month", "year"
}

// toQuery converts the wire request into an engine query.
func (req SearchRequest) toQuery() search.Query {
	q := search.Query{
		Text: req.Query,
		Mode: search.Mode(req.Type),
	}
	if req.Filters != nil {
		q.MediaKind = req.Filters.MediaType
		q.DateRange = search.DateRange(req.Filters.DateRange)
	}
	return q
}

// SearchResultItem is one search hit on the wire: the original media
// fields with relevance and tags alongside.
type SearchResultItem struct {
	models.MediaItem
	Relevance int      `json:"relevance"`
	Tags      []string `json:"tags"`
}

func toResultItems(results []search.Result) []SearchResultItem {
	out := make([]SearchResultItem, len(results))
	for i, r := range results {
		out[i] = SearchResultItem{MediaItem: r.Item, Relevance: r.Relevance, Tags: r.Tags}
	}
	return out
}

// UploadResponse mirrors the upload contract the web client expects: a
// success flag plus either the created record or an error message.
type UploadResponse struct {
	Success bool              `json:"success"`
	Track   *models.MediaItem `json:"track,omitempty"`
	Video   *models.MediaItem `json:"video,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// MediaListResponse wraps media listings.
type MediaListResponse struct {
	Media []models.MediaItem `json:"media"`
	Total int                `json:"total"`
}
