package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franz/photo-librarian/internal/store"
)

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected message about database creation")
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "photos.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	photo := store.Photo{
		Path:       "/test/photo.jpg",
		Name:       "photo.jpg",
		DateTaken:  time.Now().Unix(),
		SourceType: store.SourceScanned,
	}
	if err := db.UpsertPhotos([]store.Photo{photo}); err != nil {
		t.Fatalf("failed to insert test photo: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath)
	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}
}

func TestCheckDatabase_Directory(t *testing.T) {
	result := checkDatabase(t.TempDir())
	if !result.error {
		t.Error("a directory should fail the database check")
	}
}

func TestCheckWritableDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// missing directory is created
	missing := filepath.Join(tmpDir, "new", "library")
	result := checkWritableDirectory("Library directory", missing)
	if result.error {
		t.Errorf("missing directory should be created: %s", result.message)
	}
	if _, err := os.Stat(missing); err != nil {
		t.Errorf("directory was not created: %v", err)
	}

	// existing directory is writable
	result = checkWritableDirectory("Library directory", tmpDir)
	if result.error {
		t.Errorf("writable directory check failed: %s", result.message)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".plib_write_test")); !os.IsNotExist(err) {
		t.Error("write test file was not cleaned up")
	}

	// a file is not a directory
	file := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	result = checkWritableDirectory("Library directory", file)
	if !result.error {
		t.Error("a regular file should fail the directory check")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := checkDiskSpace(t.TempDir(), "test")

	// may warn on a small disk but never errors
	if result.error {
		t.Errorf("disk space check should not error: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected disk space information in message")
	}
}
