// Package app exposes the library's commands. Every operation opens the
// metadata store, does its work and closes it again; no state is cached
// between calls.
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/franz/photo-librarian/internal/ingest"
	"github.com/franz/photo-librarian/internal/library"
	"github.com/franz/photo-librarian/internal/meta"
	"github.com/franz/photo-librarian/internal/report"
	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
)

// App binds external calls to the store, the ingester and the library
type App struct {
	dbPath      string
	writer      *library.Writer
	extractor   *meta.Extractor
	concurrency int
	logger      *report.EventLogger
}

// Config holds application configuration
type Config struct {
	DBPath      string
	LibraryRoot string
	Concurrency int
	RetryConfig *util.RetryConfig // retries for library file operations
	Logger      *report.EventLogger
	Now         func() time.Time // clock for the last-resort timestamp
}

// New creates an App. The library root and the database directory are created
// if missing; the database itself is opened per operation.
func New(cfg *Config) (*App, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: database path is required", util.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", util.ErrStoreUnavailable, err)
	}

	writer, err := library.New(&library.Config{
		Root:        cfg.LibraryRoot,
		RetryConfig: cfg.RetryConfig,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		dbPath:      cfg.DBPath,
		writer:      writer,
		extractor:   meta.New(&meta.Config{Now: cfg.Now, Logger: cfg.Logger}),
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}, nil
}

// LibraryRoot returns the managed library directory
func (a *App) LibraryRoot() string {
	return a.writer.Root()
}

// DBPath returns the metadata store location
func (a *App) DBPath() string {
	return a.dbPath
}

// withStore opens the store for the duration of fn
func (a *App) withStore(fn func(*store.Store) error) error {
	s, err := store.Open(a.dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func (a *App) ingester(s *store.Store) *ingest.Ingester {
	cfg := &ingest.Config{
		Extractor:   a.extractor,
		Writer:      a.writer,
		Concurrency: a.concurrency,
		Logger:      a.logger,
	}
	if s != nil {
		cfg.Store = s
	}
	return ingest.New(cfg)
}

// ScanDirectory indexes every supported file under dir without copying it.
// With persist set the records are also saved to the store.
func (a *App) ScanDirectory(ctx context.Context, dir string, persist bool) (*ingest.Result, error) {
	var result *ingest.Result
	var err error
	if persist {
		err = a.withStore(func(s *store.Store) error {
			var err error
			result, err = a.ingester(s).Scan(ctx, dir, ingest.ScanOptions{Persist: true})
			return err
		})
	} else {
		result, err = a.ingester(nil).Scan(ctx, dir, ingest.ScanOptions{})
	}
	if err != nil {
		return nil, err
	}

	sortPhotos(result.Records)
	return result, nil
}

// UploadPhotos copies files into the library and records them
func (a *App) UploadPhotos(ctx context.Context, paths []string) (*ingest.Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", util.ErrInvalidArgument)
	}

	var result *ingest.Result
	err := a.withStore(func(s *store.Store) error {
		var err error
		result, err = a.ingester(s).Upload(ctx, paths)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetAllPhotos returns every stored photo, newest capture first
func (a *App) GetAllPhotos() ([]store.Photo, error) {
	return a.listPhotos(func(s *store.Store) ([]store.Photo, error) {
		return s.ListPhotos()
	})
}

// GetFavorites returns favorited photos, newest capture first
func (a *App) GetFavorites() ([]store.Photo, error) {
	return a.listPhotos(func(s *store.Store) ([]store.Photo, error) {
		return s.ListFavorites()
	})
}

// GetPhotosByMonth returns photos taken in a local calendar month
func (a *App) GetPhotosByMonth(year int, month time.Month) ([]store.Photo, error) {
	return a.listPhotos(func(s *store.Store) ([]store.Photo, error) {
		return s.ListByMonth(year, month)
	})
}

// GetAlbumPhotos returns the members of an album, newest capture first
func (a *App) GetAlbumPhotos(albumID int64) ([]store.Photo, error) {
	return a.listPhotos(func(s *store.Store) ([]store.Photo, error) {
		return s.ListAlbumPhotos(albumID)
	})
}

// GetPhoto returns the record stored under path
func (a *App) GetPhoto(path string) (*store.Photo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", util.ErrInvalidArgument)
	}
	var photo *store.Photo
	err := a.withStore(func(s *store.Store) error {
		var err error
		photo, err = s.GetPhoto(resolvePath(path))
		return err
	})
	return photo, err
}

// PhotoExists reports whether path is already indexed
func (a *App) PhotoExists(path string) (bool, error) {
	var exists bool
	err := a.withStore(func(s *store.Store) error {
		var err error
		exists, err = s.PhotoExists(resolvePath(path))
		return err
	})
	return exists, err
}

func (a *App) listPhotos(query func(*store.Store) ([]store.Photo, error)) ([]store.Photo, error) {
	var photos []store.Photo
	err := a.withStore(func(s *store.Store) error {
		var err error
		photos, err = query(s)
		return err
	})
	if err != nil {
		return nil, err
	}

	sortPhotos(photos)
	return photos, nil
}

// GetAlbums returns every album with its member count and cover photo
func (a *App) GetAlbums() ([]store.Album, error) {
	var albums []store.Album
	err := a.withStore(func(s *store.Store) error {
		var err error
		albums, err = s.ListAlbums()
		return err
	})
	return albums, err
}

// GetAlbum returns one album with its member count and cover photo
func (a *App) GetAlbum(albumID int64) (*store.Album, error) {
	var album *store.Album
	err := a.withStore(func(s *store.Store) error {
		var err error
		album, err = s.GetAlbum(albumID)
		return err
	})
	return album, err
}

// GetYearCounts returns the number of photos per capture year, newest first
func (a *App) GetYearCounts() ([]store.YearCount, error) {
	var counts []store.YearCount
	err := a.withStore(func(s *store.Store) error {
		var err error
		counts, err = s.CountByYear()
		return err
	})
	return counts, err
}

// CreateAlbum creates an empty album
func (a *App) CreateAlbum(name string) (*store.Album, error) {
	var album *store.Album
	err := a.withStore(func(s *store.Store) error {
		var err error
		album, err = s.CreateAlbum(name)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logger.LogMutation(report.EventAlbum, album.Name, fmt.Sprintf("created album %d", album.ID))
	return album, nil
}

// AddToAlbum adds photos to an album; re-adding a member is a no-op
func (a *App) AddToAlbum(albumID int64, paths []string) error {
	resolved := resolvePaths(paths)
	err := a.withStore(func(s *store.Store) error {
		return s.AddToAlbum(albumID, resolved)
	})
	if err != nil {
		return err
	}

	for _, p := range resolved {
		a.logger.LogMutation(report.EventAlbum, p, fmt.Sprintf("added to album %d", albumID))
	}
	return nil
}

// ToggleFavorite sets the favorite flag of a photo
func (a *App) ToggleFavorite(path string, favorite bool) error {
	path = resolvePath(path)
	err := a.withStore(func(s *store.Store) error {
		return s.SetFavorite(path, favorite)
	})
	if err != nil {
		return err
	}

	a.logger.LogMutation(report.EventFavorite, path, fmt.Sprintf("favorite=%t", favorite))
	return nil
}

// DeletePhotos removes managed files, then their records. Scanned originals
// are never deleted from disk. A file that cannot be removed is logged and
// its record is deleted anyway.
func (a *App) DeletePhotos(paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("%w: no paths given", util.ErrInvalidArgument)
	}
	resolved := resolvePaths(paths)

	var deleted int
	err := a.withStore(func(s *store.Store) error {
		for _, path := range resolved {
			photo, err := s.GetPhoto(path)
			if errors.Is(err, util.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			a.removeFile(photo)
		}

		var err error
		deleted, err = s.DeletePhotos(resolved)
		return err
	})
	if err != nil {
		return 0, err
	}

	for _, p := range resolved {
		a.logger.LogMutation(report.EventDelete, p, "")
	}
	return deleted, nil
}

func (a *App) removeFile(photo *store.Photo) {
	if photo.SourceType != store.SourceUploaded || !a.writer.Contains(photo.Path) {
		return
	}
	if err := a.writer.Remove(photo.Path); err != nil {
		util.WarnLog("Failed to remove %s, deleting its record anyway: %v", photo.Path, err)
		a.logger.LogMutation(report.EventDelete, photo.Path, fmt.Sprintf("file removal failed: %v", err))
	}
}

// CheckStore opens the store and runs its integrity checks
func (a *App) CheckStore() error {
	return a.withStore(func(s *store.Store) error {
		return s.CheckIntegrity()
	})
}

// sortPhotos orders photos newest capture first, ties broken by path
func sortPhotos(photos []store.Photo) {
	slices.SortStableFunc(photos, func(x, y store.Photo) int {
		if c := cmp.Compare(y.DateTaken, x.DateTaken); c != 0 {
			return c
		}
		return cmp.Compare(x.Path, y.Path)
	})
}

// resolvePath maps a user-supplied path to the canonical form records are
// keyed by. Paths of files that no longer exist are only made absolute.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func resolvePaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(p)
	}
	return out
}
