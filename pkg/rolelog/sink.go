package rolelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/rolelog/rolelog-go/internal/safefile"
)

// DefaultLogDir is where records are written unless configured otherwise.
const DefaultLogDir = "./logs/roles"

var datePattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// Appender persists a formatted record for a calendar date.
type Appender interface {
	Append(date, record string) error
}

// Sink appends records to one file per date, "<dir>/<YYYY.MM.DD>.log".
// Files are created on first write and never truncated or read back.
// Each Append is one write of one complete record.
type Sink struct {
	dir string

	mu       sync.Mutex
	dirReady bool
}

// NewSink returns a Sink writing under dir.
func NewSink(dir string) *Sink {
	if dir == "" {
		dir = DefaultLogDir
	}
	return &Sink{dir: dir}
}

// Dir returns the directory records are written to.
func (s *Sink) Dir() string { return s.dir }

// Path returns the file a record for date is appended to.
func (s *Sink) Path(date string) string {
	return filepath.Join(s.dir, date+".log")
}

// Check creates the directory and verifies it is writable, so that a process
// without usable storage fails at startup instead of dropping every event.
func (s *Sink) Check() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("log directory %s is not writable: %w", s.dir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// Append writes record to the file for date.
func (s *Sink) Append(date, record string) error {
	if !datePattern.MatchString(date) {
		return &AppendError{Date: date, Err: ErrInvalidDate}
	}
	path := s.Path(date)

	if err := s.ensureDir(); err != nil {
		return &AppendError{Date: date, Path: path, Err: err}
	}

	f, err := safefile.OpenAppend(path, 0o644)
	if errors.Is(err, os.ErrNotExist) {
		// Directory removed while running; recreate it once.
		s.mu.Lock()
		s.dirReady = false
		s.mu.Unlock()
		if err := s.ensureDir(); err != nil {
			return &AppendError{Date: date, Path: path, Err: err}
		}
		f, err = safefile.OpenAppend(path, 0o644)
	}
	if err != nil {
		return &AppendError{Date: date, Path: path, Err: err}
	}

	_, werr := f.WriteString(record)
	cerr := f.Close()
	if werr != nil {
		return &AppendError{Date: date, Path: path, Err: werr}
	}
	if cerr != nil {
		return &AppendError{Date: date, Path: path, Err: cerr}
	}
	return nil
}

func (s *Sink) ensureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirReady {
		return nil
	}
	// MkdirAll treats an existing directory as success.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	s.dirReady = true
	return nil
}

var _ Appender = (*Sink)(nil)
