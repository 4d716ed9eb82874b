package rolelog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_AppendRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "roles")
	s := NewSink(dir)

	const n = 50
	for i := 0; i < n; i++ {
		require.NoError(t, s.Append("2025.07.17", fmt.Sprintf("record %d\n", i)))
	}

	f, err := os.Open(filepath.Join(dir, "2025.07.17.log"))
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("record %d", i), line)
	}
}

func TestSink_PartitionsByDate(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir)

	require.NoError(t, s.Append("2025.07.17", "a\n"))
	require.NoError(t, s.Append("2025.07.18", "b\n"))
	require.NoError(t, s.Append("2025.07.17", "c\n"))

	day1, err := os.ReadFile(filepath.Join(dir, "2025.07.17.log"))
	require.NoError(t, err)
	day2, err := os.ReadFile(filepath.Join(dir, "2025.07.18.log"))
	require.NoError(t, err)

	assert.Equal(t, "a\nc\n", string(day1))
	assert.Equal(t, "b\n", string(day2))
}

func TestSink_ExistingFileIsAppendedTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025.07.17.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0644))

	require.NoError(t, NewSink(dir).Append("2025.07.17", "later\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier\nlater\n", string(data))
}

func TestSink_InvalidDate(t *testing.T) {
	s := NewSink(t.TempDir())

	for _, date := range []string{"", "2025-07-17", "../../etc/x", "2025.07.17/../x"} {
		err := s.Append(date, "x\n")
		assert.ErrorIs(t, err, ErrInvalidDate, "date %q", date)

		var appendErr *AppendError
		assert.True(t, errors.As(err, &appendErr))
	}
}

func TestSink_RecreatesRemovedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "roles")
	s := NewSink(dir)
	require.NoError(t, s.Append("2025.07.17", "a\n"))

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, s.Append("2025.07.17", "b\n"))

	data, err := os.ReadFile(filepath.Join(dir, "2025.07.17.log"))
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(data))
}

func TestSink_Check(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "roles")
	require.NoError(t, NewSink(dir).Check())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")
}

func TestSink_CheckUnwritable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test requires Unix")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	assert.Error(t, NewSink(dir).Check())

	err := NewSink(dir).Append("2025.07.17", "x\n")
	var appendErr *AppendError
	require.True(t, errors.As(err, &appendErr))
	assert.Equal(t, "2025.07.17", appendErr.Date)
}

func TestSink_DefaultDir(t *testing.T) {
	s := NewSink("")
	assert.Equal(t, DefaultLogDir, s.Dir())
	assert.Equal(t, filepath.Join(DefaultLogDir, "2025.07.17.log"), s.Path("2025.07.17"))
}
