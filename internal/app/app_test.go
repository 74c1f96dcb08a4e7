package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
)

func createTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func setupApp(t *testing.T) (*App, string) {
	t.Helper()

	dir := t.TempDir()
	a, err := New(&Config{
		DBPath:      filepath.Join(dir, "data", "photos.db"),
		LibraryRoot: filepath.Join(dir, "library"),
		Concurrency: 2,
		Now:         func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local) },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, dir
}

func upload(t *testing.T, a *App, paths ...string) []store.Photo {
	t.Helper()

	result, err := a.UploadPhotos(context.Background(), paths)
	if err != nil {
		t.Fatalf("UploadPhotos failed: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	return result.Records
}

func TestUploadThenQuery(t *testing.T) {
	a, dir := setupApp(t)

	older := filepath.Join(dir, "in", "2019-01-01_101010.jpg")
	newer := filepath.Join(dir, "in", "2020-01-01_101010.jpg")
	createTestFile(t, older, []byte("old"))
	createTestFile(t, newer, []byte("new"))

	upload(t, a, older, newer)

	photos, err := a.GetAllPhotos()
	if err != nil {
		t.Fatalf("GetAllPhotos failed: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if photos[0].Name != "2020-01-01_101010.jpg" {
		t.Errorf("newest photo should come first, got %s", photos[0].Name)
	}

	byMonth, err := a.GetPhotosByMonth(2019, time.January)
	if err != nil {
		t.Fatal(err)
	}
	if len(byMonth) != 1 || byMonth[0].Name != "2019-01-01_101010.jpg" {
		t.Errorf("unexpected January 2019 photos %+v", byMonth)
	}

	counts, err := a.GetYearCounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 || counts[0].Year != 2020 {
		t.Errorf("unexpected year counts %+v", counts)
	}
}

func TestAlbumsAndFavorites(t *testing.T) {
	a, dir := setupApp(t)

	src := filepath.Join(dir, "in", "2021-03-03_030303.jpg")
	createTestFile(t, src, []byte("x"))
	records := upload(t, a, src)
	path := records[0].Path

	album, err := a.CreateAlbum("Spring")
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if _, err := a.CreateAlbum("   "); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for blank name, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := a.AddToAlbum(album.ID, []string{path}); err != nil {
			t.Fatalf("AddToAlbum failed: %v", err)
		}
	}
	if err := a.AddToAlbum(album.ID+1, []string{path}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown album, got %v", err)
	}

	albums, err := a.GetAlbums()
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 || albums[0].Count != 1 || albums[0].CoverPath != path {
		t.Errorf("unexpected albums %+v", albums)
	}

	members, err := a.GetAlbumPhotos(album.ID)
	if err != nil || len(members) != 1 {
		t.Errorf("GetAlbumPhotos = %+v, %v", members, err)
	}

	got, err := a.GetAlbum(album.ID)
	if err != nil || got.Count != 1 || got.CoverPath != path {
		t.Errorf("GetAlbum = %+v, %v", got, err)
	}

	photo, err := a.GetPhoto(path)
	if err != nil || photo.SourceType != store.SourceUploaded {
		t.Errorf("GetPhoto = %+v, %v", photo, err)
	}
	if ok, err := a.PhotoExists(path); err != nil || !ok {
		t.Errorf("PhotoExists(%s) = %v, %v", path, ok, err)
	}
	if ok, _ := a.PhotoExists(filepath.Join(dir, "nope.jpg")); ok {
		t.Error("PhotoExists should be false for an unknown path")
	}

	if err := a.ToggleFavorite(path, true); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	favs, _ := a.GetFavorites()
	if len(favs) != 1 {
		t.Errorf("expected 1 favorite, got %d", len(favs))
	}

	err = a.ToggleFavorite(filepath.Join(dir, "nope.jpg"), true)
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	favs, _ = a.GetFavorites()
	if len(favs) != 1 {
		t.Errorf("failed toggle should leave favorites unchanged, got %d", len(favs))
	}
}

func TestDeleteRemovesManagedFileAndRecord(t *testing.T) {
	a, dir := setupApp(t)

	src := filepath.Join(dir, "in", "2022-02-02_020202.jpg")
	createTestFile(t, src, []byte("x"))
	records := upload(t, a, src)
	managed := records[0].Path

	album, _ := a.CreateAlbum("Keep")
	if err := a.AddToAlbum(album.ID, []string{managed}); err != nil {
		t.Fatal(err)
	}

	deleted, err := a.DeletePhotos([]string{managed})
	if err != nil {
		t.Fatalf("DeletePhotos failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	if _, err := os.Stat(managed); !os.IsNotExist(err) {
		t.Error("managed file should be removed")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("upload source must not be touched: %v", err)
	}

	members, _ := a.GetAlbumPhotos(album.ID)
	if len(members) != 0 {
		t.Errorf("deleted photo still in album: %+v", members)
	}
}

func TestDeleteKeepsScannedOriginals(t *testing.T) {
	a, dir := setupApp(t)

	original := filepath.Join(dir, "camera", "a.jpg")
	createTestFile(t, original, []byte("x"))

	result, err := a.ScanDirectory(context.Background(), filepath.Join(dir, "camera"), true)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	if _, err := a.DeletePhotos([]string{original}); err != nil {
		t.Fatalf("DeletePhotos failed: %v", err)
	}
	if _, err := os.Stat(original); err != nil {
		t.Errorf("scanned original must survive delete: %v", err)
	}

	photos, _ := a.GetAllPhotos()
	if len(photos) != 0 {
		t.Errorf("record should be gone, found %d", len(photos))
	}
}

func TestDeleteMissingManagedFile(t *testing.T) {
	a, dir := setupApp(t)

	src := filepath.Join(dir, "in", "b.jpg")
	createTestFile(t, src, []byte("x"))
	managed := upload(t, a, src)[0].Path

	if err := os.Remove(managed); err != nil {
		t.Fatal(err)
	}

	if _, err := a.DeletePhotos([]string{managed}); err != nil {
		t.Fatalf("file removal failure must not block record deletion: %v", err)
	}
	photos, _ := a.GetAllPhotos()
	if len(photos) != 0 {
		t.Errorf("record should be deleted, found %d", len(photos))
	}
}

func TestScanWithoutPersistLeavesStoreEmpty(t *testing.T) {
	a, dir := setupApp(t)

	createTestFile(t, filepath.Join(dir, "camera", "2010-10-10.jpg"), []byte("x"))
	createTestFile(t, filepath.Join(dir, "camera", "2011-11-11.jpg"), []byte("x"))

	result, err := a.ScanDirectory(context.Background(), filepath.Join(dir, "camera"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 2 || result.Records[0].Name != "2011-11-11.jpg" {
		t.Errorf("unexpected scan records %+v", result.Records)
	}

	photos, err := a.GetAllPhotos()
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 0 {
		t.Errorf("expected empty store, got %d", len(photos))
	}
}

func TestEmptyArguments(t *testing.T) {
	a, _ := setupApp(t)

	if _, err := a.UploadPhotos(context.Background(), nil); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("UploadPhotos: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := a.DeletePhotos(nil); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("DeletePhotos: expected ErrInvalidArgument, got %v", err)
	}
	if err := a.AddToAlbum(1, nil); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("AddToAlbum: expected ErrInvalidArgument, got %v", err)
	}
}

func TestStoreUnavailable(t *testing.T) {
	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db-is-a-dir")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		t.Fatal(err)
	}

	a, err := New(&Config{DBPath: dbDir, LibraryRoot: filepath.Join(dir, "library")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := a.GetAllPhotos(); !errors.Is(err, util.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
