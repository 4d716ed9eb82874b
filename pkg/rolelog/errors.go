package rolelog

import (
	"errors"
	"fmt"

	"github.com/rolelog/rolelog-go/internal/logfinder"
)

// Sentinel errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrAlreadyWatching is returned when Watch is called twice.
	ErrAlreadyWatching = errors.New("already watching")

	// ErrInvalidDate is returned by Sink.Append for a date that is not "YYYY.MM.DD".
	ErrInvalidDate = errors.New("invalid date")

	// ErrLogDirNotFound is returned when no server log directory can be located.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles is returned when the server log directory holds no log files.
	ErrNoLogFiles = logfinder.ErrNoLogFiles
)

// AppendError reports a failed write of a record to the date-partitioned log.
// A failed append never stops a Watcher; the error is reported and the next
// line is processed.
type AppendError struct {
	Date string
	Path string
	Err  error
}

func (e *AppendError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("append %s: %v", e.Date, e.Err)
	}
	return fmt.Sprintf("append %s (%s): %v", e.Date, e.Path, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// ParseError wraps an unexpected parser failure. Lines that simply do not
// match are not errors.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WatchOp identifies the Watcher operation that failed.
type WatchOp string

const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
)

// WatchError reports a failure in the Watcher's file handling.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }
