package safefile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestOpenRegular_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	if err := os.WriteFile(path, []byte("test content"), 0644); err != nil {
		t.Fatal(err)
	}

	f, info, err := OpenRegular(path)
	if err != nil {
		t.Fatalf("OpenRegular() error = %v, want nil", err)
	}
	defer f.Close()

	if !info.Mode().IsRegular() {
		t.Error("expected regular file")
	}

	buf := make([]byte, 12)
	n, err := f.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf[:n]) != "test content" {
		t.Errorf("Read() = %q, want %q", string(buf[:n]), "test content")
	}
}

func TestOpenRegular_FileNotExist(t *testing.T) {
	_, _, err := OpenRegular("/nonexistent/path/file.txt")
	if !os.IsNotExist(err) {
		t.Errorf("OpenRegular() error = %v, want os.IsNotExist", err)
	}
}

func TestOpenRegular_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test requires Unix")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")

	if err := os.WriteFile(target, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	_, _, err := OpenRegular(link)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("OpenRegular() error = %v, want ErrNotRegularFile", err)
	}
}

func TestOpenRegular_RejectsDirectory(t *testing.T) {
	_, _, err := OpenRegular(t.TempDir())
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("OpenRegular() error = %v, want ErrNotRegularFile", err)
	}
}

func TestOpenAppend_CreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2025.07.17.log")

	for _, s := range []string{"first\n", "second\n"} {
		f, err := OpenAppend(path, 0644)
		if err != nil {
			t.Fatalf("OpenAppend() error = %v", err)
		}
		if _, err := f.WriteString(s); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file content = %q, want %q", data, "first\nsecond\n")
	}
}

func TestOpenAppend_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test requires Unix")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "elsewhere.txt")
	link := filepath.Join(dir, "2025.07.17.log")
	if err := os.WriteFile(target, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	_, err := OpenAppend(link, 0644)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("OpenAppend() error = %v, want ErrNotRegularFile", err)
	}
}

func TestOpenAppend_RejectsDirectory(t *testing.T) {
	_, err := OpenAppend(t.TempDir(), 0644)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("OpenAppend() error = %v, want ErrNotRegularFile", err)
	}
}

func TestOpenAppend_MissingParent(t *testing.T) {
	_, err := OpenAppend(filepath.Join(t.TempDir(), "missing", "x.log"), 0644)
	if !os.IsNotExist(err) {
		t.Errorf("OpenAppend() error = %v, want os.IsNotExist", err)
	}
}
