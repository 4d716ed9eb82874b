// Package tailer follows a growing log file line by line.
package tailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the existing content before following; otherwise
	// only lines appended after New are delivered.
	FromStart bool
	// Poll uses stat polling instead of inotify. Needed on some network
	// and container filesystems.
	Poll bool
	// ReOpen reopens the file when it is truncated or recreated in place.
	ReOpen bool
}

// DefaultConfig follows new lines only, reopening on recreate.
func DefaultConfig() Config {
	return Config{ReOpen: true}
}

// Tailer delivers lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path. The file must exist.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		MustExist: true,
		Poll:      cfg.Poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail file: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of lines, without trailing newline or CR.
// It is closed when the tailer stops.
func (tl *Tailer) Lines() <-chan string { return tl.lines }

// Errors returns read errors. It is closed when the tailer stops.
func (tl *Tailer) Errors() <-chan error { return tl.errs }

// Stop stops following and releases the file. Safe to call multiple times.
func (tl *Tailer) Stop() error {
	tl.stopOnce.Do(func() {
		tl.cancel()
		tl.stopErr = tl.t.Stop()
		<-tl.done
		tl.t.Cleanup()
	})
	return tl.stopErr
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case tl.errs <- line.Err:
				default:
				}
				continue
			}
			select {
			case tl.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}
