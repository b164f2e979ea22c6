package mediaservice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ahlgren/medley/internal/apperr"
	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/search"
	"github.com/ahlgren/medley/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestCatalog(t)
	return NewService(store, db, search.New(), 1<<20)
}

func trackInput(title, filename, content string) UploadInput {
	return UploadInput{
		Title:    title,
		Artist:   "Tester",
		Filename: filename,
		Size:     int64(len(content)),
		Data:     strings.NewReader(content),
	}
}

func TestUploadTrack(t *testing.T) {
	svc := testService(t)

	item, err := svc.UploadTrack(context.Background(), trackInput("Summer Song", "summer song!.mp3", "audio-bytes"))
	if err != nil {
		t.Fatalf("UploadTrack: %v", err)
	}
	if item.Kind != models.KindAudio {
		t.Errorf("kind = %q, want audio", item.Kind)
	}
	if item.FilePath != "uploads/summer_song_.mp3" {
		t.Errorf("filePath = %q, want sanitized name under uploads/", item.FilePath)
	}
	if item.MimeType != "audio/mpeg" {
		t.Errorf("mimeType = %q, want derived from extension", item.MimeType)
	}
	if item.FileSize != int64(len("audio-bytes")) {
		t.Errorf("fileSize = %d", item.FileSize)
	}
	if item.Checksum == "" {
		t.Error("checksum should be set")
	}

	got, err := svc.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Summer Song" {
		t.Errorf("Get title = %q", got.Title)
	}
}

func TestUploadTrackMissingFields(t *testing.T) {
	svc := testService(t)
	cases := []UploadInput{
		{Artist: "A", Filename: "x.mp3", Data: strings.NewReader("x")},
		{Title: "T", Filename: "x.mp3", Data: strings.NewReader("x")},
		{Title: "T", Artist: "A", Data: strings.NewReader("x")},
		{Title: "T", Artist: "A", Filename: "x.mp3"},
	}
	for i, in := range cases {
		if _, err := svc.UploadTrack(context.Background(), in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestUploadTrackDuplicateRejected(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.UploadTrack(ctx, trackInput("One", "dup.mp3", "x")); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, err := svc.UploadTrack(ctx, trackInput("Two", "dup.mp3", "y"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate upload err = %v, want ErrAlreadyExists", err)
	}
}

func TestUploadVideoValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	in := trackInput("Clip", "clip.avi", "video")
	in.MimeType = "video/x-msvideo"
	if _, err := svc.UploadVideo(ctx, in); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("disallowed mime err = %v, want ErrInvalidInput", err)
	}

	in = trackInput("Clip", "clip.mp4", "video")
	in.MimeType = "video/mp4"
	in.Size = 2 << 20 // over the 1 MiB test cap
	if _, err := svc.UploadVideo(ctx, in); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("oversize err = %v, want ErrInvalidInput", err)
	}
}

func TestUploadVideoTimestampedNames(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	upload := func() *models.MediaItem {
		in := trackInput("Clip", "clip.mp4", "video-bytes")
		in.MimeType = "video/mp4"
		item, err := svc.UploadVideo(ctx, in)
		if err != nil {
			t.Fatalf("UploadVideo: %v", err)
		}
		return item
	}

	a := upload()
	b := upload()

	if !strings.HasPrefix(a.FilePath, "uploads/videos/") {
		t.Errorf("filePath = %q, want under uploads/videos/", a.FilePath)
	}
	if a.FilePath == b.FilePath {
		t.Errorf("repeated uploads share path %q, want distinct timestamped names", a.FilePath)
	}
	if a.Kind != models.KindVideo {
		t.Errorf("kind = %q, want video", a.Kind)
	}
}

func TestListByKind(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	_, _ = svc.UploadTrack(ctx, trackInput("Track", "t.mp3", "a"))
	in := trackInput("Clip", "c.mp4", "v")
	in.MimeType = "video/mp4"
	_, _ = svc.UploadVideo(ctx, in)

	tracks, err := svc.ListTracks(ctx)
	if err != nil || len(tracks) != 1 || tracks[0].Kind != models.KindAudio {
		t.Errorf("ListTracks = %+v, %v", tracks, err)
	}
	videos, err := svc.ListVideos(ctx)
	if err != nil || len(videos) != 1 || videos[0].Kind != models.KindVideo {
		t.Errorf("ListVideos = %+v, %v", videos, err)
	}
	all, err := svc.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("ListAll = %d items, %v", len(all), err)
	}
}

func TestListEmptyIsNonNil(t *testing.T) {
	svc := testService(t)
	tracks, err := svc.ListTracks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tracks == nil {
		t.Error("empty listing should be non-nil for JSON encoding")
	}
}

func TestOpenMedia(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	item, err := svc.UploadTrack(ctx, trackInput("Readable", "r.mp3", "payload"))
	if err != nil {
		t.Fatal(err)
	}

	got, rc, err := svc.OpenMedia(ctx, item.ID)
	if err != nil {
		t.Fatalf("OpenMedia: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
	if got.ID != item.ID {
		t.Errorf("item id = %q", got.ID)
	}

	if _, _, err := svc.OpenMedia(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	var events []string
	svc.SetEventFunc(func(kind string, item models.MediaItem) {
		events = append(events, kind+":"+item.Title)
	})

	item, err := svc.UploadTrack(ctx, trackInput("Doomed", "d.mp3", "x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, item.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.OpenMedia(ctx, item.ID); err == nil {
		t.Error("blob should be gone after delete")
	}

	want := []string{"added:Doomed", "removed:Doomed"}
	if len(events) != 2 || events[0] != want[0] || events[1] != want[1] {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestSearchValidatesQuery(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Search(ctx, search.Query{Text: "x", Mode: "fuzzy"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("invalid mode err = %v, want ErrInvalidInput", err)
	}

	results, err := svc.Search(ctx, search.Query{Text: ""})
	if err != nil {
		t.Fatalf("empty query: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("empty query results = %v, want empty non-nil slice", results)
	}
}

func TestSearchFindsUploadedTrack(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	_, _ = svc.UploadTrack(ctx, trackInput("Workout Mix", "w.mp3", "x"))
	_, _ = svc.UploadTrack(ctx, trackInput("Quiet Evening", "q.mp3", "y"))

	results, err := svc.Search(ctx, search.Query{Text: "workout"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Item.Title != "Workout Mix" {
		t.Errorf("results = %+v, want only Workout Mix", results)
	}
}

func TestStats(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	_, _ = svc.UploadTrack(ctx, trackInput("A", "a.mp3", "x"))
	_, _ = svc.UploadTrack(ctx, trackInput("B", "b.mp3", "y"))

	n, err := svc.Stats(ctx)
	if err != nil || n != 2 {
		t.Errorf("Stats = %d, %v; want 2", n, err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"song.mp3":            "song.mp3",
		"../../evil.mp3":      "evil.mp3",
		"dir\\sub\\file.mp3":  "file.mp3",
		"sp ace & sym#.mp3":   "sp_ace___sym_.mp3",
		"uploads/nested.mp3":  "nested.mp3",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
