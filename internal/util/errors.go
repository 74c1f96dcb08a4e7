package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnsupported indicates a file extension that is neither photo nor video
	ErrUnsupported = errors.New("unsupported media type")

	// ErrNotFound indicates a photo, album or path that does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates an empty album name, empty path list or similar
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCopy indicates the source was unreadable or the library destination unwritable.
	// It fails a single file, never the whole batch.
	ErrCopy = errors.New("copy failed")

	// ErrStoreUnavailable indicates the metadata store could not be opened or locked.
	// It is fatal for the operation that hit it.
	ErrStoreUnavailable = errors.New("store unavailable")
)
