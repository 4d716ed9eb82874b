package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rolelog/rolelog-go/internal/safefile"
)

// MaxFileSize is the largest roster snapshot File will read (1MB).
const MaxFileSize = 1 * 1024 * 1024

// snapshot is the on-disk roster format. JSON is accepted as well, since
// it is valid YAML.
//
//	players:
//	  - id: 7b5e...
//	    name: joksulainen
type snapshot struct {
	Players []Player `yaml:"players"`
}

// File is a roster read from a snapshot file that the host rewrites whenever
// players connect or disconnect. A missing file is an empty roster.
type File struct {
	path string
	log  *zap.Logger

	mu      sync.RWMutex
	players []Player
}

// NewFile loads the snapshot at path. A nil logger disables logging.
func NewFile(path string, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &File{path: path, log: logger}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Players implements Roster.
func (f *File) Players() []Player {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Player, len(f.players))
	copy(out, f.players)
	return out
}

// Reload re-reads the snapshot file. On error the previous snapshot is kept.
func (f *File) Reload() error {
	players, err := readSnapshot(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.players = players
	f.mu.Unlock()
	f.log.Debug("roster reloaded", zap.String("path", f.path), zap.Int("players", len(players)))
	return nil
}

// Watch reloads the snapshot whenever the file changes. It blocks until ctx
// is cancelled. The parent directory is watched so that snapshots replaced by
// rename are picked up.
func (f *File) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating roster watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching roster directory: %w", err)
	}
	name := filepath.Clean(f.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if err := f.Reload(); err != nil {
				f.log.Warn("roster reload failed", zap.String("path", f.path), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("roster watcher error", zap.Error(err))
		}
	}
}

func readSnapshot(path string) ([]Player, error) {
	file, info, err := safefile.OpenRegular(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening roster file: %w", err)
	}
	defer file.Close()

	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("roster file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("roster file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return snap.Players, nil
}
