package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/photo-librarian/internal/app"
	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
)

func setupServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	dir := t.TempDir()
	a, err := app.New(&app.Config{
		DBPath:      filepath.Join(dir, "photos.db"),
		LibraryRoot: filepath.Join(dir, "library"),
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}

	srv := httptest.NewServer(New(a).Router())
	t.Cleanup(srv.Close)
	return srv, dir
}

func createTestFile(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestUploadAlbumFavoriteDeleteFlow(t *testing.T) {
	srv, dir := setupServer(t)

	good := filepath.Join(dir, "in", "2019-07-04_102030.jpg")
	createTestFile(t, good)
	missing := filepath.Join(dir, "in", "missing.jpg")

	var uploaded ingestResponse
	status := doJSON(t, "POST", srv.URL+"/api/upload", pathsRequest{Paths: []string{good, missing}}, &uploaded)
	if status != http.StatusOK {
		t.Fatalf("upload status = %d", status)
	}
	if len(uploaded.Photos) != 1 || len(uploaded.Failures) != 1 {
		t.Fatalf("upload = %+v", uploaded)
	}
	path := uploaded.Photos[0].Path

	var photos []store.Photo
	if status := doJSON(t, "GET", srv.URL+"/api/photos", nil, &photos); status != http.StatusOK || len(photos) != 1 {
		t.Fatalf("GET /api/photos = %d, %+v", status, photos)
	}

	lookup := srv.URL + "/api/photo?path=" + url.QueryEscape(path)
	var one store.Photo
	if status := doJSON(t, "GET", lookup, nil, &one); status != http.StatusOK || one.Path != path {
		t.Fatalf("GET /api/photo = %d, %+v", status, one)
	}
	if status := doJSON(t, "HEAD", lookup, nil, nil); status != http.StatusOK {
		t.Errorf("HEAD /api/photo = %d, want 200", status)
	}
	if status := doJSON(t, "HEAD", srv.URL+"/api/photo?path="+url.QueryEscape(missing), nil, nil); status != http.StatusNotFound {
		t.Errorf("HEAD unknown photo = %d, want 404", status)
	}

	var album store.Album
	if status := doJSON(t, "POST", srv.URL+"/api/albums", albumRequest{Name: "Summer"}, &album); status != http.StatusCreated {
		t.Fatalf("create album status = %d", status)
	}

	albumURL := fmt.Sprintf("%s/api/albums/%d/photos", srv.URL, album.ID)
	if status := doJSON(t, "POST", albumURL, pathsRequest{Paths: []string{path}}, nil); status != http.StatusOK {
		t.Fatalf("add to album status = %d", status)
	}

	var albums []store.Album
	doJSON(t, "GET", srv.URL+"/api/albums", nil, &albums)
	if len(albums) != 1 || albums[0].Count != 1 || albums[0].CoverPath != path {
		t.Errorf("albums = %+v", albums)
	}

	var single store.Album
	if status := doJSON(t, "GET", fmt.Sprintf("%s/api/albums/%d", srv.URL, album.ID), nil, &single); status != http.StatusOK || single.Count != 1 {
		t.Errorf("GET album = %d, %+v", status, single)
	}

	if status := doJSON(t, "PUT", srv.URL+"/api/favorites", favoriteRequest{Path: path, IsFavorite: true}, nil); status != http.StatusOK {
		t.Fatalf("favorite status = %d", status)
	}
	doJSON(t, "GET", srv.URL+"/api/photos?favorites=true", nil, &photos)
	if len(photos) != 1 || !photos[0].IsFavorite {
		t.Errorf("favorites = %+v", photos)
	}

	doJSON(t, "GET", srv.URL+"/api/photos?year=2019&month=7", nil, &photos)
	if len(photos) != 1 {
		t.Errorf("July 2019 photos = %+v", photos)
	}

	var deleted map[string]int
	if status := doJSON(t, "DELETE", srv.URL+"/api/photos", pathsRequest{Paths: []string{path}}, &deleted); status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	if deleted["deleted"] != 1 {
		t.Errorf("deleted = %+v", deleted)
	}

	doJSON(t, "GET", albumURL, nil, &photos)
	if len(photos) != 0 {
		t.Errorf("album should be empty after delete, got %+v", photos)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	srv, dir := setupServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		expected int
	}{
		{"favorite unknown path", "PUT", "/api/favorites", favoriteRequest{Path: filepath.Join(dir, "nope.jpg"), IsFavorite: true}, http.StatusNotFound},
		{"favorite without path", "PUT", "/api/favorites", favoriteRequest{}, http.StatusBadRequest},
		{"blank album name", "POST", "/api/albums", albumRequest{Name: " "}, http.StatusBadRequest},
		{"unknown album", "GET", "/api/albums/999/photos", nil, http.StatusNotFound},
		{"get unknown album", "GET", "/api/albums/999", nil, http.StatusNotFound},
		{"photo without path", "GET", "/api/photo", nil, http.StatusBadRequest},
		{"unknown photo", "GET", "/api/photo?path=" + url.QueryEscape(filepath.Join(dir, "nope.jpg")), nil, http.StatusNotFound},
		{"add to unknown album", "POST", "/api/albums/999/photos", pathsRequest{Paths: []string{"/x.jpg"}}, http.StatusNotFound},
		{"empty upload", "POST", "/api/upload", pathsRequest{}, http.StatusBadRequest},
		{"empty delete", "DELETE", "/api/photos", pathsRequest{}, http.StatusBadRequest},
		{"scan missing dir", "POST", "/api/scan", scanRequest{Dir: filepath.Join(dir, "missing")}, http.StatusNotFound},
		{"bad month", "GET", "/api/photos?year=2020&month=x", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp map[string]string
			status := doJSON(t, tt.method, srv.URL+tt.path, tt.body, &errResp)
			if status != tt.expected {
				t.Errorf("status = %d, expected %d (%v)", status, tt.expected, errResp)
			}
			if errResp["error"] == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestScanEndpoint(t *testing.T) {
	srv, dir := setupServer(t)

	createTestFile(t, filepath.Join(dir, "camera", "a.jpg"))
	createTestFile(t, filepath.Join(dir, "camera", "b.txt"))

	var resp ingestResponse
	status := doJSON(t, "POST", srv.URL+"/api/scan", scanRequest{Dir: filepath.Join(dir, "camera"), Save: true}, &resp)
	if status != http.StatusOK {
		t.Fatalf("scan status = %d", status)
	}
	if len(resp.Photos) != 1 || resp.Skipped != 1 {
		t.Errorf("scan = %+v", resp)
	}

	var counts []store.YearCount
	doJSON(t, "GET", srv.URL+"/api/stats/years", nil, &counts)
	if len(counts) != 1 || counts[0].Year != time.Now().Year() {
		t.Errorf("year counts = %+v", counts)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := setupServer(t)

	var health map[string]string
	if status := doJSON(t, "GET", srv.URL+"/healthz", nil, &health); status != http.StatusOK || health["status"] != "ok" {
		t.Errorf("healthz = %d %+v", status, health)
	}

	// generate at least one API request sample
	doJSON(t, "GET", srv.URL+"/api/albums", nil, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), "plib_http_requests_total") {
		t.Error("metrics output is missing plib_http_requests_total")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wrap: %w", util.ErrNotFound), http.StatusNotFound},
		{util.ErrInvalidArgument, http.StatusBadRequest},
		{util.ErrUnsupported, http.StatusBadRequest},
		{util.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.expected {
			t.Errorf("statusFor(%v) = %d, expected %d", tt.err, got, tt.expected)
		}
	}
}
