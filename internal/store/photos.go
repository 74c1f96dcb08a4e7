package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/util"
)

const photoColumns = `path, name, date_taken, width, height, media_type, source_type, is_favorite, created_at`

// UpsertPhotos inserts photos in a single transaction. A path that already
// exists gets its metadata refreshed while keeping its favorite flag, creation
// time and album membership.
func (s *Store) UpsertPhotos(photos []Photo) (err error) {
	defer observe("upsert_photos", time.Now(), &err)

	if len(photos) == 0 {
		return nil
	}

	createdAt := s.now().Unix()

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO photos (` + photoColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
			ON CONFLICT(path) DO UPDATE SET
				name = excluded.name,
				date_taken = excluded.date_taken,
				width = excluded.width,
				height = excluded.height,
				media_type = excluded.media_type,
				source_type = excluded.source_type
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i := range photos {
			p := &photos[i]
			if p.Path == "" {
				return fmt.Errorf("%w: photo with empty path", util.ErrInvalidArgument)
			}
			kind := p.Kind
			if kind == media.KindUnsupported {
				kind = media.Classify(p.Path)
			}
			if _, err := stmt.Exec(p.Path, p.Name, p.DateTaken, p.Width, p.Height,
				string(kind), string(p.SourceType), createdAt); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", p.Path, err)
			}
		}
		return nil
	})
}

// GetPhoto returns the photo stored under path
func (s *Store) GetPhoto(path string) (*Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoColumns+` FROM photos WHERE path = ?`, path)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: photo %s", util.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

// PhotoExists reports whether path is in the store
func (s *Store) PhotoExists(path string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE path = ?`, path).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check photo: %w", err)
	}
	return count > 0, nil
}

// CountPhotos returns the number of stored photos
func (s *Store) CountPhotos() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// ListPhotos returns every photo, newest capture first
func (s *Store) ListPhotos() (photos []Photo, err error) {
	defer observe("list_photos", time.Now(), &err)

	return s.queryPhotos(`SELECT ` + photoColumns + ` FROM photos ORDER BY date_taken DESC, path`)
}

// ListFavorites returns favorited photos, newest capture first
func (s *Store) ListFavorites() (photos []Photo, err error) {
	defer observe("list_favorites", time.Now(), &err)

	return s.queryPhotos(`SELECT ` + photoColumns + ` FROM photos WHERE is_favorite = 1 ORDER BY date_taken DESC, path`)
}

// ListByMonth returns photos taken in the given local calendar month
func (s *Store) ListByMonth(year int, month time.Month) (photos []Photo, err error) {
	defer observe("list_by_month", time.Now(), &err)

	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", util.ErrInvalidArgument, month)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	return s.queryPhotos(`SELECT `+photoColumns+` FROM photos
		WHERE date_taken >= ? AND date_taken < ?
		ORDER BY date_taken DESC, path`, start.Unix(), end.Unix())
}

// CountByYear returns photo counts per local calendar year, newest year first
func (s *Store) CountByYear() (counts []YearCount, err error) {
	defer observe("count_by_year", time.Now(), &err)

	rows, err := s.db.Query(`SELECT date_taken FROM photos`)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	byYear := make(map[int]int)
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		byYear[time.Unix(ts, 0).Year()]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts = make([]YearCount, 0, len(byYear))
	for year, n := range byYear {
		counts = append(counts, YearCount{Year: year, Count: n})
	}
	// insertion sort; a library spans a handful of years
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Year > counts[j-1].Year; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}

	return counts, nil
}

// SetFavorite sets the favorite flag of path
func (s *Store) SetFavorite(path string, favorite bool) (err error) {
	defer observe("set_favorite", time.Now(), &err)

	res, err := s.db.Exec(`UPDATE photos SET is_favorite = ? WHERE path = ?`, boolToInt(favorite), path)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: photo %s", util.ErrNotFound, path)
	}
	return nil
}

// DeletePhotos removes photo rows and their album membership. Unknown paths
// are ignored. Files on disk are not touched.
func (s *Store) DeletePhotos(paths []string) (deleted int, err error) {
	defer observe("delete_photos", time.Now(), &err)

	if len(paths) == 0 {
		return 0, fmt.Errorf("%w: no paths given", util.ErrInvalidArgument)
	}

	err = s.Transaction(func(tx *sql.Tx) error {
		for _, path := range paths {
			if _, err := tx.Exec(`DELETE FROM album_photos WHERE photo_path = ?`, path); err != nil {
				return fmt.Errorf("failed to delete memberships of %s: %w", path, err)
			}
			res, err := tx.Exec(`DELETE FROM photos WHERE path = ?`, path)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", path, err)
			}
			n, _ := res.RowsAffected()
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *Store) queryPhotos(query string, args ...interface{}) ([]Photo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *p)
	}

	return photos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhoto(row rowScanner) (*Photo, error) {
	var p Photo
	var kind, source string
	var favorite int

	err := row.Scan(&p.Path, &p.Name, &p.DateTaken, &p.Width, &p.Height, &kind, &source, &favorite, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Kind = media.ParseKind(kind)
	p.SourceType = SourceType(source)
	p.IsFavorite = favorite != 0
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
