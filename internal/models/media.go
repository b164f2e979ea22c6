// Package models defines the domain types for Medley.
package models

import "time"

// Kind discriminates the two media variants.
type Kind string

// Media kinds.
const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Valid reports whether k is a known media kind.
func (k Kind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// MediaItem represents one record in the library catalog.
//
// ID is a UUID, globally unique across both kinds: audio and video share
// a single catalog table, so an identifier can never refer to two
// different records.
type MediaItem struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	FilePath  string    `json:"filePath"`
	FileSize  int64     `json:"fileSize,omitempty"` // populated for video uploads
	MimeType  string    `json:"mimeType,omitempty"`
	Checksum  string    `json:"checksum,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileMetadata is a lightweight representation of a file on disk,
// returned by storage list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
