// Package library manages the on-disk photo library: uploaded files are copied
// into <root>/<YYYY>/<MM>/ and never overwrite each other.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/report"
	"github.com/franz/photo-librarian/internal/util"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultBufferSize = 128 * 1024
	maxCollisions     = 10000
)

// Writer copies files into the managed library
type Writer struct {
	root        string
	bufferSize  int
	retryConfig *util.RetryConfig
	logger      *report.EventLogger
}

// Config holds writer configuration
type Config struct {
	Root        string
	BufferSize  int               // 0 = default
	RetryConfig *util.RetryConfig // nil = no retries
	Logger      *report.EventLogger
}

// Placement describes a file written into the library
type Placement struct {
	Path  string
	Bytes int64
}

// New creates a Writer rooted at cfg.Root, creating the root if needed
func New(cfg *Config) (*Writer, error) {
	if cfg == nil || strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("%w: library root is required", util.ErrInvalidArgument)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library root: %w", err)
	}

	retryConfig := cfg.RetryConfig
	if retryConfig == nil {
		retryConfig = util.NoRetry()
	}
	if err := util.RetryableMkdirAll(root, 0755, retryConfig); err != nil {
		return nil, fmt.Errorf("failed to create library root: %w", err)
	}
	// Resolve after creation so Contains compares canonical paths
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Writer{
		root:        root,
		bufferSize:  bufferSize,
		retryConfig: retryConfig,
		logger:      cfg.Logger,
	}, nil
}

// Root returns the absolute library root
func (w *Writer) Root() string {
	return w.root
}

// DirFor returns the month directory a file taken at t belongs in
func (w *Writer) DirFor(t time.Time) string {
	return filepath.Join(w.root, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())))
}

// Place copies src into the month directory for taken. If the original name is
// taken the file becomes <stem>_1<ext>, <stem>_2<ext> and so on. The target name
// is reserved with O_EXCL before copying, so concurrent Place calls never pick
// the same path. Errors wrap util.ErrCopy.
func (w *Writer) Place(ctx context.Context, src string, taken time.Time) (*Placement, error) {
	start := time.Now()

	in, err := util.RetryableOpen(src, w.retryConfig)
	if err != nil {
		return nil, w.fail(src, "", start, fmt.Errorf("%w: failed to open source: %v", util.ErrCopy, err))
	}
	defer in.Close()

	dir := w.DirFor(taken)
	if err := util.RetryableMkdirAll(dir, 0755, w.retryConfig); err != nil {
		return nil, w.fail(src, "", start, fmt.Errorf("%w: failed to create directory: %v", util.ErrCopy, err))
	}

	dest, err := reserve(dir, norm.NFC.String(filepath.Base(src)))
	if err != nil {
		return nil, w.fail(src, "", start, fmt.Errorf("%w: %v", util.ErrCopy, err))
	}

	written, err := w.copyInto(ctx, in, dest)
	if err != nil {
		os.Remove(dest) // release the reservation
		return nil, w.fail(src, dest, start, fmt.Errorf("%w: %v", util.ErrCopy, err))
	}

	// A YYYY or MM directory may itself be a symlink
	if resolved, err := filepath.EvalSymlinks(dest); err == nil {
		dest = resolved
	}

	metrics.LibraryBytesCopied.Add(float64(written))
	w.logger.LogCopy(src, dest, written, time.Since(start), nil)
	util.DebugLog("Copied: %s -> %s (%s)", src, dest, humanize.IBytes(uint64(written)))

	return &Placement{Path: dest, Bytes: written}, nil
}

func (w *Writer) fail(src, dest string, start time.Time, err error) error {
	w.logger.LogCopy(src, dest, 0, time.Since(start), err)
	return err
}

// copyInto writes to a .part file next to dest and renames it over the
// reserved placeholder once complete.
func (w *Writer) copyInto(ctx context.Context, src io.Reader, dest string) (int64, error) {
	tempPath := dest + ".part"
	out, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := copyWithContext(ctx, out, src, w.bufferSize)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if err := util.RetryableRename(tempPath, dest, w.retryConfig); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	return written, nil
}

// reserve creates an empty file under the first free name in dir
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < maxCollisions; n++ {
		candidate := name
		if n > 0 {
			candidate = stem + "_" + strconv.Itoa(n) + ext
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to reserve %s: %w", path, err)
		}
	}

	return "", fmt.Errorf("no free name for %s in %s after %d attempts", name, dir, maxCollisions)
}

// Contains reports whether path lies inside the library root
func (w *Writer) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Remove deletes a managed file. Paths outside the library are refused so that
// scanned originals are never touched.
func (w *Writer) Remove(path string) error {
	if !w.Contains(path) {
		return fmt.Errorf("%w: %s is outside the library", util.ErrInvalidArgument, path)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", util.ErrNotFound, path)
		}
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	util.DebugLog("Removed managed file: %s", path)
	return nil
}

// copyWithContext copies data with context cancellation support
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, bufferSize int) (int64, error) {
	buf := make([]byte, bufferSize)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				return written, er
			}
			break
		}
	}
	return written, nil
}
