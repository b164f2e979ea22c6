package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/ahlgren/medley/internal/catalog"
	"github.com/ahlgren/medley/internal/mediaservice"
	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/search"
	"github.com/ahlgren/medley/internal/storage"
)

// testEnv sets up a temp library, SQLite catalog, service, and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*mediaservice.Service, http.Handler) {
	t.Helper()

	libDir := t.TempDir()
	store, err := storage.NewFS(libDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "medley-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := mediaservice.NewService(store, db, search.New(), 10<<20)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

// multipartBody builds an upload form with title, artist, and a file part
// carrying the given content type.
func multipartBody(t *testing.T, title, artist, filename, mimeType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("artist", artist)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if mimeType != "" {
		hdr.Set("Content-Type", mimeType)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte(content))
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadTrack(t *testing.T, router http.Handler, title, filename string) models.MediaItem {
	t.Helper()
	body, contentType := multipartBody(t, title, "Tester", filename, "audio/mpeg", "audio-bytes")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.Track == nil {
		t.Fatalf("upload response = %s", w.Body.String())
	}
	return *resp.Track
}

func TestUploadAndListTracks(t *testing.T) {
	_, router := testEnv(t, "")

	item := uploadTrack(t, router, "Summer Song", "summer.mp3")
	if item.Kind != models.KindAudio {
		t.Errorf("kind = %q", item.Kind)
	}

	req := httptest.NewRequest(http.MethodGet, "/tracks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var items []models.MediaItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Title != "Summer Song" {
		t.Errorf("tracks = %s", w.Body.String())
	}
}

func TestUploadMissingFile(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "No File")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	uploadTrack(t, router, "One", "dup.mp3")

	body, contentType := multipartBody(t, "Two", "Tester", "dup.mp3", "audio/mpeg", "other")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate upload = %d, want 409", w.Code)
	}
}

func TestUploadVideo(t *testing.T) {
	_, router := testEnv(t, "")

	body, contentType := multipartBody(t, "Clip", "Maker", "clip.mp4", "video/mp4", "video-bytes")
	req := httptest.NewRequest(http.MethodPost, "/videos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.Video == nil || resp.Video.Kind != models.KindVideo {
		t.Fatalf("response = %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/videos", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var items []models.MediaItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 {
		t.Errorf("videos = %s", w.Body.String())
	}
}

func TestUploadVideoRejectsMimeType(t *testing.T) {
	_, router := testEnv(t, "")

	body, contentType := multipartBody(t, "Clip", "Maker", "clip.avi", "video/x-msvideo", "x")
	req := httptest.NewRequest(http.MethodPost, "/videos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp UploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || resp.Error == "" {
		t.Errorf("response = %s", w.Body.String())
	}
}

func TestListMediaEnvelope(t *testing.T) {
	_, router := testEnv(t, "")
	uploadTrack(t, router, "A", "a.mp3")
	uploadTrack(t, router, "B", "b.mp3")

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp MediaListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Media) != 2 {
		t.Errorf("media list = %s", w.Body.String())
	}
}

func TestGetAndDeleteMedia(t *testing.T) {
	_, router := testEnv(t, "")
	item := uploadTrack(t, router, "Doomed", "d.mp3")

	req := httptest.NewRequest(http.MethodGet, "/media/"+item.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/media/"+item.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/media/"+item.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/media/"+item.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestSmartSearchRanksResults(t *testing.T) {
	_, router := testEnv(t, "")
	uploadTrack(t, router, "Morning Workout Mix Extended", "long.mp3")
	uploadTrack(t, router, "Workout Mix", "short.mp3")
	uploadTrack(t, router, "Quiet Evening", "quiet.mp3")

	body, _ := json.Marshal(SearchRequest{Query: "workout mix"})
	req := httptest.NewRequest(http.MethodPost, "/search/smart", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var results []SearchResultItem
	_ = json.Unmarshal(w.Body.Bytes(), &results)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2: %s", len(results), w.Body.String())
	}
	if results[0].Title != "Workout Mix" {
		t.Errorf("top result = %q, want exact title match", results[0].Title)
	}
	if results[0].Relevance <= results[1].Relevance {
		t.Errorf("relevance order: %d <= %d", results[0].Relevance, results[1].Relevance)
	}
	if len(results[0].Tags) == 0 || len(results[0].Tags) > 6 {
		t.Errorf("tags = %v", results[0].Tags)
	}
}

func TestSmartSearchEmptyQuery(t *testing.T) {
	_, router := testEnv(t, "")
	uploadTrack(t, router, "Anything", "a.mp3")

	body, _ := json.Marshal(SearchRequest{Query: "   "})
	req := httptest.NewRequest(http.MethodPost, "/search/smart", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestSmartSearchBadRequests(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/search/smart", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}

	body, _ := json.Marshal(SearchRequest{Query: "x", Type: "fuzzy"})
	req = httptest.NewRequest(http.MethodPost, "/search/smart", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid type = %d, want 400", w.Code)
	}
}

func TestSmartSearchMediaTypeFilter(t *testing.T) {
	_, router := testEnv(t, "")
	uploadTrack(t, router, "Summer Song", "s.mp3")

	vbody, contentType := multipartBody(t, "Summer Clip", "Maker", "clip.mp4", "video/mp4", "v")
	req := httptest.NewRequest(http.MethodPost, "/videos/upload", vbody)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("video upload = %d", w.Code)
	}

	body, _ := json.Marshal(SearchRequest{Query: "summer", Filters: &SearchFilters{MediaType: "video"}})
	req = httptest.NewRequest(http.MethodPost, "/search/smart", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var results []SearchResultItem
	_ = json.Unmarshal(w.Body.Bytes(), &results)
	if len(results) != 1 || results[0].Kind != models.KindVideo {
		t.Errorf("filtered results = %s", w.Body.String())
	}
}

func TestDownloadTrack(t *testing.T) {
	_, router := testEnv(t, "")
	item := uploadTrack(t, router, "Streamable", "s.mp3")

	req := httptest.NewRequest(http.MethodGet, "/download/"+item.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "audio-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="Streamable.mp3"` {
		t.Errorf("disposition = %q", cd)
	}
}

func TestDownloadKindMismatch(t *testing.T) {
	_, router := testEnv(t, "")
	item := uploadTrack(t, router, "Audio Only", "a.mp3")

	// An audio id on the video download route is a 404.
	req := httptest.NewRequest(http.MethodGet, "/videos/download/"+item.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDownloadMissing(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/download/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/tracks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracks", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}
