package models

import (
	"path/filepath"
	"strings"
)

// AllowedVideoMimeTypes is the upload allow-list for video files.
var AllowedVideoMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/mpeg":      true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/ogg":       true,
}

// videoMimeExt maps a video mime type to the download file extension.
var videoMimeExt = map[string]string{
	"video/mp4":       "mp4",
	"video/mpeg":      "mpeg",
	"video/quicktime": "mov",
	"video/webm":      "webm",
	"video/ogg":       "ogv",
}

// extKind maps known file extensions to a media kind and mime type,
// used when ingesting files dropped directly into the library directory.
var extKind = map[string]struct {
	kind Kind
	mime string
}{
	".mp3":  {KindAudio, "audio/mpeg"},
	".wav":  {KindAudio, "audio/wav"},
	".flac": {KindAudio, "audio/flac"},
	".m4a":  {KindAudio, "audio/mp4"},
	".aac":  {KindAudio, "audio/aac"},
	".oga":  {KindAudio, "audio/ogg"},
	".mp4":  {KindVideo, "video/mp4"},
	".mpeg": {KindVideo, "video/mpeg"},
	".mpg":  {KindVideo, "video/mpeg"},
	".mov":  {KindVideo, "video/quicktime"},
	".webm": {KindVideo, "video/webm"},
	".ogv":  {KindVideo, "video/ogg"},
}

// VideoExtension returns the download file extension for a video mime
// type, defaulting to mp4 for unknown or empty types.
func VideoExtension(mimeType string) string {
	if ext, ok := videoMimeExt[mimeType]; ok {
		return ext
	}
	return "mp4"
}

// KindForPath inspects the file extension and reports the media kind and
// mime type. ok is false for files that are not recognized media.
func KindForPath(path string) (kind Kind, mimeType string, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	entry, ok := extKind[ext]
	if !ok {
		return "", "", false
	}
	return entry.kind, entry.mime, true
}

// TitleForPath derives a display title from a file name: the base name
// without extension.
func TitleForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
