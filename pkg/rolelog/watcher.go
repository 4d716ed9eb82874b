package rolelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/internal/logfinder"
	"github.com/rolelog/rolelog-go/internal/tailer"
)

// watcherErrBuffer is the buffer size for the error channel.
// A small buffer prevents error loss during brief moments when the consumer
// is busy, while keeping memory usage minimal.
const watcherErrBuffer = 16

// Watcher follows the server log and feeds every line through a Pipeline.
//
// Lines are processed one at a time on a single goroutine; each record is
// appended before the next line is read, so records keep log order.
type Watcher struct {
	cfg      watchConfig // immutable after creation
	pipeline *Pipeline
	logDir   string // empty when following an explicit file
	log      *zap.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// NewWatcher creates a watcher that feeds p.
// Validates options and locates the server log directory.
// Does NOT start goroutines.
func NewWatcher(p *Pipeline, opts ...WatchOption) (*Watcher, error) {
	if p == nil {
		return nil, errors.New("pipeline is nil")
	}
	cfg := applyWatchOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	var logDir string
	if cfg.serverLog == "" {
		dir, err := logfinder.FindLogDir(cfg.serverLogDir, cfg.serverLogPattern)
		if err != nil {
			return nil, fmt.Errorf("finding server log directory: %w", err)
		}
		logDir = dir
	}

	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Watcher{
		cfg:      *cfg,
		pipeline: p,
		logDir:   logDir,
		log:      log,
	}, nil
}

// Watch starts following and returns channels of matched outcomes and
// errors. Only lines that were role events produce an Outcome; callers must
// drain both channels. Both close when ctx is cancelled or on a fatal error.
//
// Append failures are delivered as *AppendError and do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context) (<-chan Outcome, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	outCh := make(chan Outcome)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, outCh, errCh)

	return outCh, errCh, nil
}

// Close stops the watcher and waits for its goroutine to exit.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, outCh chan<- Outcome, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(outCh)
	defer close(errCh)

	logFile, err := w.findLogFileWithWait(ctx, errCh)
	if err != nil {
		return
	}
	w.log.Debug("following server log", zap.String("path", logFile))

	cfg := tailer.DefaultConfig()
	cfg.FromStart = w.cfg.replayFromStart
	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()

	// Rotation only applies when following a directory
	var rotation <-chan time.Time
	if w.logDir != "" {
		ticker := time.NewTicker(w.cfg.pollInterval)
		defer ticker.Stop()
		rotation = ticker.C
	}

	currentFile := logFile

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			w.processLine(ctx, line, outCh, errCh)
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: currentFile, Err: err})
		case <-rotation:
			newFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.serverLogPattern)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Err: err})
				continue
			}
			if newFile == currentFile {
				continue
			}
			w.log.Info("server log rotation detected",
				zap.String("from", currentFile), zap.String("to", newFile))
			_ = t.Stop()
			cfg := tailer.DefaultConfig()
			cfg.FromStart = true // a new server log is read from its first line
			newTailer, err := tailer.New(ctx, newFile, cfg)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: newFile, Err: err})
				return
			}
			t = newTailer
			currentFile = newFile
		}
	}
}

// findLogFileWithWait returns the file to follow, optionally waiting for one
// to appear. Errors are also sent to errCh.
func (w *Watcher) findLogFileWithWait(ctx context.Context, errCh chan<- error) (string, error) {
	if w.cfg.serverLog != "" {
		return w.cfg.serverLog, nil
	}

	logFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.serverLogPattern)
	if err == nil {
		return logFile, nil
	}
	if !errors.Is(err, ErrNoLogFiles) || !w.cfg.waitForLogs {
		sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	w.log.Info("no server log yet, waiting", zap.String("dir", w.logDir),
		zap.Duration("poll_interval", w.cfg.pollInterval))
	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.serverLogPattern)
			if err == nil {
				return logFile, nil
			}
			if !errors.Is(err, ErrNoLogFiles) {
				sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, outCh chan<- Outcome, errCh chan<- error) {
	out, err := w.pipeline.Process(ctx, line)
	if err != nil {
		sendError(ctx, errCh, err)
	}
	if !out.Matched() {
		return
	}
	select {
	case outCh <- out:
	case <-ctx.Done():
	}
}

// sendError sends an error to the error channel.
// Errors are only dropped if the buffer is full; the context case keeps
// shutdown from blocking.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
