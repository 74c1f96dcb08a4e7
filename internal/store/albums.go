package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franz/photo-librarian/internal/util"
	"golang.org/x/text/unicode/norm"
)

// CreateAlbum creates an empty album. Names are trimmed and NFC-normalized;
// a blank name is rejected.
func (s *Store) CreateAlbum(name string) (album *Album, err error) {
	defer observe("create_album", time.Now(), &err)

	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: album name is empty", util.ErrInvalidArgument)
	}

	createdAt := s.now().Unix()
	res, err := s.db.Exec(`INSERT INTO albums (name, created_at) VALUES (?, ?)`, name, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get album id: %w", err)
	}

	return &Album{ID: id, Name: name, CreatedAt: createdAt}, nil
}

// GetAlbum returns an album with its computed count and cover
func (s *Store) GetAlbum(id int64) (*Album, error) {
	albums, err := s.queryAlbums(`WHERE a.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("%w: album %d", util.ErrNotFound, id)
	}
	return &albums[0], nil
}

// ListAlbums returns all albums, oldest first. The cover is the member with
// the most recent capture time; empty albums have no cover.
func (s *Store) ListAlbums() (albums []Album, err error) {
	defer observe("list_albums", time.Now(), &err)

	return s.queryAlbums(``)
}

func (s *Store) queryAlbums(where string, args ...interface{}) ([]Album, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.name, a.created_at,
			(SELECT COUNT(*) FROM album_photos ap WHERE ap.album_id = a.id),
			(SELECT p.path FROM album_photos ap
				JOIN photos p ON p.path = ap.photo_path
				WHERE ap.album_id = a.id
				ORDER BY p.date_taken DESC, p.path
				LIMIT 1)
		FROM albums a
		`+where+`
		ORDER BY a.created_at, a.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var a Album
		var cover sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.Count, &cover); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		a.CoverPath = cover.String
		albums = append(albums, a)
	}

	return albums, rows.Err()
}

// ListAlbumPhotos returns the members of an album, newest capture first
func (s *Store) ListAlbumPhotos(albumID int64) (photos []Photo, err error) {
	defer observe("list_album_photos", time.Now(), &err)

	if err := s.requireAlbum(s.db, albumID); err != nil {
		return nil, err
	}

	return s.queryPhotos(`
		SELECT p.path, p.name, p.date_taken, p.width, p.height, p.media_type, p.source_type, p.is_favorite, p.created_at
		FROM album_photos ap
		JOIN photos p ON p.path = ap.photo_path
		WHERE ap.album_id = ?
		ORDER BY p.date_taken DESC, p.path
	`, albumID)
}

// AddToAlbum adds photos to an album. Adding a photo that is already a member
// is a no-op. Every path must exist; otherwise nothing is added.
func (s *Store) AddToAlbum(albumID int64, paths []string) (err error) {
	defer observe("add_to_album", time.Now(), &err)

	if len(paths) == 0 {
		return fmt.Errorf("%w: no paths given", util.ErrInvalidArgument)
	}

	return s.Transaction(func(tx *sql.Tx) error {
		if err := s.requireAlbum(tx, albumID); err != nil {
			return err
		}

		missing, err := missingPhotos(tx, paths)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: photo %s", util.ErrNotFound, strings.Join(missing, ", "))
		}

		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO album_photos (album_id, photo_path) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, path := range paths {
			if _, err := stmt.Exec(albumID, path); err != nil {
				return fmt.Errorf("failed to add %s to album %d: %w", path, albumID, err)
			}
		}
		return nil
	})
}

type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func (s *Store) requireAlbum(q querier, albumID int64) error {
	var id int64
	err := q.QueryRow(`SELECT id FROM albums WHERE id = ?`, albumID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: album %d", util.ErrNotFound, albumID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up album: %w", err)
	}
	return nil
}

// missingPhotos returns the paths that have no photo row, in input order
func missingPhotos(q querier, paths []string) ([]string, error) {
	unique := make([]interface{}, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	rows, err := q.Query(`SELECT path FROM photos WHERE path IN (`+placeholders(len(unique))+`)`, unique...)
	if err != nil {
		return nil, fmt.Errorf("failed to check photos: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(unique))
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		found[path] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, p := range unique {
		if path := p.(string); !found[path] {
			missing = append(missing, path)
		}
	}
	return missing, nil
}
