// Package store persists photo records, albums and album membership in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	currentSchemaVersion = 2
)

// SourceType records how a photo entered the library
type SourceType string

const (
	// SourceScanned files stay where they were found and are never deleted
	SourceScanned SourceType = "scanned"
	// SourceUploaded files were copied into the managed library
	SourceUploaded SourceType = "uploaded"
)

// Photo is one media file known to the library
type Photo struct {
	Path       string     `json:"path"`
	Name       string     `json:"name"`
	DateTaken  int64      `json:"date_taken"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Kind       media.Kind `json:"media_type"`
	SourceType SourceType `json:"source_type"`
	IsFavorite bool       `json:"is_favorite"`
	CreatedAt  int64      `json:"created_at"`
}

// Album is a named collection of photos. Count and CoverPath are computed
// when albums are listed.
type Album struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	Count     int    `json:"count"`
	CoverPath string `json:"cover_photo_path,omitempty"`
}

// YearCount is the number of photos taken in a calendar year
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Store represents the library's persistent state
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates a SQLite database at the given path.
// Failures wrap util.ErrStoreUnavailable.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", util.ErrStoreUnavailable, err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db, now: time.Now}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migration failed: %v", util.ErrStoreUnavailable, err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check and PRAGMA foreign_key_check
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	rows, err := s.db.Query("PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check query failed: %w", err)
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		violations++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("foreign key check failed: %w", err)
	}
	if violations > 0 {
		return fmt.Errorf("foreign key check found %d orphaned rows", violations)
	}

	return nil
}

// migrate applies database migrations
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if version < 2 {
		if _, err := tx.Exec(schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
		if err := s.setSchemaVersion(tx, 2); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion records a schema version in a transaction
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// observe records duration and outcome of a store operation
func observe(operation string, start time.Time, err *error) {
	metrics.ObserveStore(operation, start, *err)
}
