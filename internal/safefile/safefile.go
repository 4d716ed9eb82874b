// Package safefile provides file operations that refuse symlinks and special files.
package safefile

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotRegularFile is returned when a path is a symlink, FIFO, device,
// socket or directory.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens an existing file for reading and verifies it is a regular file.
//
// The path is checked with os.Lstat before opening and the descriptor is
// checked again after opening, which narrows the window in which the file
// can be swapped for a symlink or FIFO.
//
// The caller must close the returned file when done.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	return f, info, nil
}

// OpenAppend opens path for appending, creating it with perm if it does not
// exist. An existing path must be a regular file; symlinks are not followed
// into other locations.
//
// Writes to the returned file go to the end of the file regardless of other
// writers (O_APPEND).
func OpenAppend(path string, perm os.FileMode) (*os.File, error) {
	linkInfo, err := os.Lstat(path)
	switch {
	case err == nil:
		if !linkInfo.Mode().IsRegular() {
			return nil, ErrNotRegularFile
		}
	case errors.Is(err, os.ErrNotExist):
		// created below
	default:
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, perm)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat after open: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotRegularFile
	}

	return f, nil
}
