package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailer_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Brickadia.log")
	require.NoError(t, os.WriteFile(path, []byte("first\r\nsecond\n"), 0644))

	cfg := DefaultConfig()
	cfg.FromStart = true
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	assert.Equal(t, "first", readLine(t, tl))
	assert.Equal(t, "second", readLine(t, tl))
}

func TestTailer_FollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Brickadia.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	tl, err := New(context.Background(), path, DefaultConfig())
	require.NoError(t, err)
	defer tl.Stop()

	// Give the tailer time to seek to the end
	time.Sleep(200 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("new\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "new", readLine(t, tl))
}

func TestTailer_MissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "absent.log"), DefaultConfig())
	assert.Error(t, err)
}

func TestTailer_StopClosesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Brickadia.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tl, err := New(context.Background(), path, DefaultConfig())
	require.NoError(t, err)

	_ = tl.Stop()
	_ = tl.Stop() // idempotent

	select {
	case _, ok := <-tl.Lines():
		assert.False(t, ok, "Lines() should be closed after Stop")
	case <-time.After(2 * time.Second):
		t.Fatal("Lines() not closed after Stop")
	}
}

func readLine(t *testing.T, tl *Tailer) string {
	t.Helper()
	select {
	case line, ok := <-tl.Lines():
		require.True(t, ok, "lines channel closed")
		return line
	case err := <-tl.Errors():
		t.Fatalf("unexpected tail error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for line")
	}
	return ""
}
