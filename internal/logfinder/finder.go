// Package logfinder locates Brickadia server log directories and files.
package logfinder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// EnvLogDir is the environment variable name for specifying the server log directory.
const EnvLogDir = "ROLELOG_SERVER_LOG_DIR"

// DefaultPattern matches the live server log and its rotated backups.
const DefaultPattern = "*.log"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
	ErrBadPattern     = errors.New("invalid log file pattern")
)

// DefaultLogDirs returns candidate server log directories in priority order:
// the omegga data directory relative to the working directory, then the
// dedicated server's per-user location.
func DefaultLogDirs() []string {
	dirs := []string{filepath.Join("data", "Saved", "Logs")}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "Epic", "Brickadia", "Saved", "Logs"))
	}
	return dirs
}

// ValidatePattern reports whether pattern is a usable doublestar glob.
func ValidatePattern(pattern string) error {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return nil
}

// FindLogDir returns the server log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. ROLELOG_SERVER_LOG_DIR environment variable
//  3. the first of DefaultLogDirs() holding files that match pattern
//
// Returns ErrLogDirNotFound if no valid directory is found.
// The returned path has symlinks resolved.
func FindLogDir(explicit, pattern string) (string, error) {
	if explicit != "" {
		if resolved := resolveDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid", ErrLogDirNotFound)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		resolved := resolveDir(dir)
		if resolved == "" {
			continue
		}
		if matches, err := glob(resolved, pattern); err == nil && len(matches) > 0 {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// logCandidate holds a log file path and its cached modification time.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the most recently modified regular file in dir
// matching pattern. Symlinks are skipped.
//
// Returns ErrNoLogFiles if no log files are found.
func FindLatestLogFile(dir, pattern string) (string, error) {
	matches, err := glob(dir, pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoLogFiles
	}

	// Stat files once and cache results so deletions during the sort are harmless
	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    path,
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	// Newest first; ties broken by name so the result is stable
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].modTime != candidates[j].modTime {
			return candidates[i].modTime > candidates[j].modTime
		}
		return candidates[i].path > candidates[j].path
	})

	return candidates[0].path, nil
}

func glob(dir, pattern string) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoLogFiles
		}
		return nil, fmt.Errorf("globbing log files: %w", err)
	}
	return matches, nil
}

// resolveDir resolves symlinks and checks that dir is a directory.
// Returns the resolved path if valid, empty string otherwise.
func resolveDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}
	return resolved
}
