// Package ingest turns candidate files into photo records. Scan mode indexes
// files where they are; upload mode copies them into the managed library
// first. Per-file work runs on a bounded worker pool and the results are
// merged once every worker has finished.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/franz/photo-librarian/internal/library"
	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/meta"
	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/report"
	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/iter"
)

const (
	modeScan   = "scan"
	modeUpload = "upload"
)

// PhotoWriter persists a batch of photo records
type PhotoWriter interface {
	UpsertPhotos(photos []store.Photo) error
}

// Failure is a file that could not be ingested
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result holds the outcome of one ingestion batch. Records and Failures keep
// the order of the input paths.
type Result struct {
	Records  []store.Photo
	Failures []Failure
	Skipped  int // unsupported files seen by a directory scan
}

// ScanOptions controls a directory scan
type ScanOptions struct {
	Persist bool // upsert the scanned records into the store
}

// Ingester runs scan and upload batches
type Ingester struct {
	store       PhotoWriter
	extractor   *meta.Extractor
	writer      *library.Writer
	concurrency int
	logger      *report.EventLogger
}

// Config holds ingester configuration
type Config struct {
	Store       PhotoWriter
	Extractor   *meta.Extractor
	Writer      *library.Writer // required for uploads only
	Concurrency int             // 0 = GOMAXPROCS
	Logger      *report.EventLogger
}

// New creates a new Ingester
func New(cfg *Config) *Ingester {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = meta.New(&meta.Config{Logger: cfg.Logger})
	}

	return &Ingester{
		store:       cfg.Store,
		extractor:   extractor,
		writer:      cfg.Writer,
		concurrency: concurrency,
		logger:      cfg.Logger,
	}
}

// outcome is what one worker reports for one file
type outcome struct {
	record  *store.Photo
	failure *Failure
}

// Scan walks dir recursively and builds a record for every supported file,
// keyed by its canonical source path. Nothing is copied. Like Upload, a
// started scan ignores cancellation of ctx.
func (in *Ingester) Scan(ctx context.Context, dir string, opts ScanOptions) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.IngestDuration.WithLabelValues(modeScan).Observe(time.Since(start).Seconds())
	}()

	root, err := canonicalPath(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", util.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", util.ErrInvalidArgument, dir)
	}

	util.InfoLog("Scanning %s", root)

	result := &Result{}
	var candidates []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			result.Failures = append(result.Failures, in.fail(modeScan, path, fmt.Errorf("%w: %v", util.ErrCopy, err)))
			return nil // Continue walking
		}
		if d.IsDir() {
			return nil
		}

		kind := media.Classify(path)
		if kind == media.KindUnsupported {
			result.Skipped++
			metrics.IngestFilesTotal.WithLabelValues(modeScan, "skipped").Inc()
			return nil
		}

		in.logger.LogScan(path, string(kind))
		candidates = append(candidates, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan of %s aborted: %w", root, walkErr)
	}

	outcomes := in.run(candidates, "Scanning", func(path string) outcome {
		return in.scanFile(path)
	})
	in.merge(result, outcomes)

	if opts.Persist && len(result.Records) > 0 {
		if err := in.persist(result.Records); err != nil {
			return nil, err
		}
	}

	util.SuccessLog("Scan complete: %d files indexed, %d failed, %d skipped",
		len(result.Records), len(result.Failures), result.Skipped)
	return result, nil
}

func (in *Ingester) scanFile(path string) outcome {
	canonical, err := canonicalPath(path)
	if err != nil {
		return outcome{failure: ptr(in.fail(modeScan, path, fmt.Errorf("%w: %v", util.ErrCopy, err)))}
	}
	if err := checkReadable(canonical); err != nil {
		return outcome{failure: ptr(in.fail(modeScan, path, err))}
	}

	res := in.extractor.Extract(canonical)
	record := buildRecord(canonical, res, store.SourceScanned)

	metrics.IngestFilesTotal.WithLabelValues(modeScan, "ok").Inc()
	in.logger.LogIngest(modeScan, path, canonical)
	return outcome{record: &record}
}

// Upload copies each path into the managed library and stores the resulting
// records in one batch. A file that cannot be read or copied becomes a
// Failure; the rest of the batch still goes through.
// A started batch runs to completion: cancellation of ctx is ignored.
func (in *Ingester) Upload(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", util.ErrInvalidArgument)
	}
	if in.writer == nil {
		return nil, fmt.Errorf("%w: no library configured", util.ErrInvalidArgument)
	}
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	defer func() {
		metrics.IngestDuration.WithLabelValues(modeUpload).Observe(time.Since(start).Seconds())
	}()

	util.InfoLog("Uploading %d files into %s", len(paths), in.writer.Root())

	outcomes := in.run(paths, "Uploading", func(path string) outcome {
		return in.uploadFile(ctx, path)
	})

	result := &Result{}
	in.merge(result, outcomes)

	if len(result.Records) > 0 {
		if err := in.persist(result.Records); err != nil {
			return nil, err
		}
	}

	util.SuccessLog("Upload complete: %d files added, %d failed", len(result.Records), len(result.Failures))
	return result, nil
}

func (in *Ingester) uploadFile(ctx context.Context, path string) outcome {
	if media.Classify(path) == media.KindUnsupported {
		return outcome{failure: ptr(in.fail(modeUpload, path, fmt.Errorf("%w: %s", util.ErrUnsupported, filepath.Ext(path))))}
	}
	if err := checkReadable(path); err != nil {
		return outcome{failure: ptr(in.fail(modeUpload, path, err))}
	}

	res := in.extractor.Extract(path)

	placement, err := in.writer.Place(ctx, path, res.Time())
	if err != nil {
		return outcome{failure: ptr(in.fail(modeUpload, path, err))}
	}

	record := buildRecord(placement.Path, res, store.SourceUploaded)

	metrics.IngestFilesTotal.WithLabelValues(modeUpload, "ok").Inc()
	in.logger.LogIngest(modeUpload, path, placement.Path)
	return outcome{record: &record}
}

// run maps fn over paths on a pool of at most in.concurrency goroutines.
// Output order matches input order.
func (in *Ingester) run(paths []string, description string, fn func(string) outcome) []outcome {
	if len(paths) == 0 {
		return nil
	}

	var bar *progressbar.ProgressBar
	if util.ShowProgress() {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	mapper := iter.Mapper[string, outcome]{MaxGoroutines: in.concurrency}
	return mapper.Map(paths, func(path *string) outcome {
		o := fn(*path)
		if bar != nil {
			bar.Add(1)
		}
		return o
	})
}

// merge appends outcomes to result. Records are keyed by canonical path, so
// a file reached twice (through a symlink) is kept once, at its first position.
func (in *Ingester) merge(result *Result, outcomes []outcome) {
	seen := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		switch {
		case o.record != nil:
			if seen[o.record.Path] {
				util.DebugLog("Skipping duplicate of %s", o.record.Path)
				continue
			}
			seen[o.record.Path] = true
			result.Records = append(result.Records, *o.record)
		case o.failure != nil:
			result.Failures = append(result.Failures, *o.failure)
		}
	}
}

func (in *Ingester) persist(records []store.Photo) error {
	if in.store == nil {
		return fmt.Errorf("%w: no store configured", util.ErrStoreUnavailable)
	}
	if err := in.store.UpsertPhotos(records); err != nil {
		if errors.Is(err, util.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", util.ErrStoreUnavailable, err)
	}
	return nil
}

func (in *Ingester) fail(mode, path string, err error) Failure {
	util.WarnLog("Failed to ingest %s: %v", path, err)
	metrics.IngestFilesTotal.WithLabelValues(mode, "failed").Inc()
	in.logger.LogFailure(mode, path, err)
	return Failure{Path: path, Err: err}
}

func buildRecord(path string, res meta.Result, source store.SourceType) store.Photo {
	return store.Photo{
		Path:       path,
		Name:       filepath.Base(path),
		DateTaken:  res.Timestamp,
		Width:      res.Width,
		Height:     res.Height,
		Kind:       media.Classify(path),
		SourceType: source,
	}
}

// canonicalPath returns an absolute path with symlinks resolved
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// checkReadable verifies that path is a regular file that can be opened
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrCopy, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrCopy, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", util.ErrCopy, path)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
