package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventScan     EventType = "scan"
	EventExtract  EventType = "extract"
	EventDegraded EventType = "degraded"
	EventCopy     EventType = "copy"
	EventIngest   EventType = "ingest"
	EventFailure  EventType = "failure"
	EventFavorite EventType = "favorite"
	EventAlbum    EventType = "album"
	EventDelete   EventType = "delete"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event written to the JSONL log
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	RunID        string            `json:"run_id"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	SrcPath      string            `json:"src_path,omitempty"`
	DestPath     string            `json:"dest_path,omitempty"`
	Source       string            `json:"source,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file.
// All methods are safe on a nil receiver, which discards events.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level.
// Each logger gets a fresh run ID stamped on every event it writes.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.New().String()
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s-%s.jsonl", timestamp, runID[:8])
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs a file discovered by a directory scan
func (l *EventLogger) LogScan(srcPath string, kind string) error {
	return l.Log(&Event{
		Level:   LevelDebug,
		Event:   EventScan,
		SrcPath: srcPath,
		Extra:   map[string]string{"kind": kind},
	})
}

// LogExtract logs which stage of the timestamp chain resolved a file.
// The wall-clock stage is logged as a warning-level degraded event.
func (l *EventLogger) LogExtract(srcPath, source string, degraded bool) error {
	if degraded {
		return l.Log(&Event{
			Level:   LevelWarning,
			Event:   EventDegraded,
			SrcPath: srcPath,
			Source:  source,
			Reason:  "no reliable capture timestamp",
		})
	}

	return l.Log(&Event{
		Level:   LevelDebug,
		Event:   EventExtract,
		SrcPath: srcPath,
		Source:  source,
	})
}

// LogCopy logs a copy into the managed library
func (l *EventLogger) LogCopy(srcPath, destPath string, bytesWritten int64, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:        level,
		Event:        EventCopy,
		SrcPath:      srcPath,
		DestPath:     destPath,
		BytesWritten: bytesWritten,
		Duration:     duration.Milliseconds(),
		Error:        errMsg,
	})
}

// LogIngest logs a record accepted into a batch
func (l *EventLogger) LogIngest(mode, srcPath, recordPath string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventIngest,
		SrcPath:  srcPath,
		DestPath: recordPath,
		Extra:    map[string]string{"mode": mode},
	})
}

// LogFailure logs a per-file failure within a batch
func (l *EventLogger) LogFailure(mode, srcPath string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   EventFailure,
		SrcPath: srcPath,
		Error:   err.Error(),
		Extra:   map[string]string{"mode": mode},
	})
}

// LogMutation logs a favorite, album or delete change
func (l *EventLogger) LogMutation(event EventType, subject, reason string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   event,
		SrcPath: subject,
		Reason:  reason,
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the identifier stamped on this logger's events
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
