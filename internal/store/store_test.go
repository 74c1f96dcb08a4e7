package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/util"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "photos.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPhoto(path string, taken time.Time) Photo {
	return Photo{
		Path:       path,
		Name:       filepath.Base(path),
		DateTaken:  taken.Unix(),
		Width:      640,
		Height:     480,
		Kind:       media.KindPhoto,
		SourceType: SourceScanned,
	}
}

func countRows(t *testing.T, s *Store, query string, args ...interface{}) int {
	t.Helper()

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func TestStoreOpenAndMigrate(t *testing.T) {
	store := openTestStore(t)

	version, err := store.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	tables := []string{"photos", "albums", "album_photos", "schema_version"}
	for _, table := range tables {
		n := countRows(t, store, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		if n != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}

	indexes := []string{"idx_photos_date_taken", "idx_photos_favorite", "idx_album_photos_path"}
	for _, index := range indexes {
		n := countRows(t, store, "SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", index)
		if n != 1 {
			t.Errorf("expected index %s to exist", index)
		}
	}

	var fk int
	if err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.UpsertPhotos([]Photo{testPhoto("/p/a.jpg", time.Now())}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	if n := countRows(t, s, "SELECT COUNT(*) FROM schema_version"); n != currentSchemaVersion {
		t.Errorf("migrations should not re-run, schema_version has %d rows", n)
	}
	if ok, _ := s.PhotoExists("/p/a.jpg"); !ok {
		t.Error("photo should survive reopen")
	}
}

func TestOpenUnavailable(t *testing.T) {
	// a directory cannot be opened as a database file
	_, err := Open(t.TempDir())
	if !errors.Is(err, util.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCheckIntegrity(t *testing.T) {
	store := openTestStore(t)
	if err := store.CheckIntegrity(); err != nil {
		t.Errorf("fresh store should pass integrity check: %v", err)
	}
}

func TestSQLiteVersion(t *testing.T) {
	if SQLiteVersion() == "" {
		t.Error("expected a SQLite version string")
	}
}
