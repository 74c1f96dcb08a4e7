package meta

import (
	"os"
	"time"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/report"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/rwcarlsen/goexif/exif"
)

// Source identifies which stage of the fallback chain produced a timestamp
type Source int

const (
	// SourceEmbedded is a capture-time tag inside the file (EXIF or container atom)
	SourceEmbedded Source = iota
	// SourceFilename is a date pattern in the file name
	SourceFilename
	// SourceModTime is the filesystem modification time
	SourceModTime
	// SourceClock is the wall clock at extraction; it always succeeds
	SourceClock
)

func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceFilename:
		return "filename"
	case SourceModTime:
		return "mtime"
	case SourceClock:
		return "clock"
	default:
		return "unknown"
	}
}

// Result is what the extractor knows about one file
type Result struct {
	Timestamp int64 // Unix seconds
	Width     int   // 0 if undeterminable
	Height    int   // 0 if undeterminable
	Source    Source
}

// Degraded reports whether the timestamp came from filesystem or clock
// fallbacks rather than anything recorded about the capture itself.
func (r Result) Degraded() bool {
	return r.Source >= SourceModTime
}

// Time returns the timestamp as a local time.Time
func (r Result) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// stage is one step of the timestamp chain
type stage struct {
	source  Source
	resolve func() (time.Time, bool)
}

// Extractor resolves capture time and dimensions for media files.
// It only reads the source file and is safe for concurrent use.
type Extractor struct {
	now    func() time.Time
	logger *report.EventLogger
}

// Config holds extractor configuration
type Config struct {
	Now    func() time.Time // defaults to time.Now
	Logger *report.EventLogger
}

// New creates a new metadata extractor
func New(cfg *Config) *Extractor {
	if cfg == nil {
		cfg = &Config{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Extractor{
		now:    now,
		logger: cfg.Logger,
	}
}

// Extract resolves the capture timestamp and dimensions of path.
// It never fails: missing metadata degrades to coarser timestamp sources and
// zeroed dimensions.
func (e *Extractor) Extract(path string) Result {
	kind := media.Classify(path)

	var x *exif.Exif
	if kind == media.KindPhoto {
		x = readExif(path)
	}

	stages := []stage{
		{SourceEmbedded, func() (time.Time, bool) { return embeddedTime(path, kind, x) }},
		{SourceFilename, func() (time.Time, bool) { return FilenameTime(path) }},
		{SourceModTime, func() (time.Time, bool) { return modTime(path) }},
	}

	ts, source := e.resolve(stages)
	width, height := dimensions(path, kind, x)

	switch source {
	case SourceClock:
		util.WarnLog("No capture timestamp for %s, using current time", path)
	case SourceFilename, SourceModTime:
		util.DebugLog("Capture timestamp for %s taken from %s", path, source)
	}
	metrics.TimestampSourceTotal.WithLabelValues(source.String()).Inc()
	e.logger.LogExtract(path, source.String(), source == SourceClock)

	return Result{
		Timestamp: ts.Unix(),
		Width:     width,
		Height:    height,
		Source:    source,
	}
}

// resolve walks the stages in order and returns the first value found.
// The wall clock terminates the chain, so resolve always has an answer.
func (e *Extractor) resolve(stages []stage) (time.Time, Source) {
	for _, s := range stages {
		if t, ok := s.resolve(); ok {
			return t, s.source
		}
	}
	return e.now(), SourceClock
}

func embeddedTime(path string, kind media.Kind, x *exif.Exif) (time.Time, bool) {
	switch kind {
	case media.KindPhoto:
		return exifTime(x)
	case media.KindVideo:
		return containerTime(path)
	default:
		return time.Time{}, false
	}
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil || info.ModTime().IsZero() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
