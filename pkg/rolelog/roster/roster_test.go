package roster_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolelog/rolelog-go/pkg/rolelog/roster"
)

func TestMemory_JoinLeaveOrder(t *testing.T) {
	var m roster.Memory
	m.Join(roster.Player{ID: "P1", Name: "alice"})
	m.Join(roster.Player{ID: "P2", Name: "bob"})
	m.Join(roster.Player{ID: "P3", Name: "alice"})

	assert.Equal(t, []roster.Player{
		{ID: "P1", Name: "alice"},
		{ID: "P2", Name: "bob"},
		{ID: "P3", Name: "alice"},
	}, m.Players())

	m.Leave("P2")
	m.Leave("unknown")
	assert.Equal(t, []roster.Player{
		{ID: "P1", Name: "alice"},
		{ID: "P3", Name: "alice"},
	}, m.Players())

	// Reconnect moves the player to the end.
	m.Join(roster.Player{ID: "P1", Name: "alice"})
	assert.Equal(t, []roster.Player{
		{ID: "P3", Name: "alice"},
		{ID: "P1", Name: "alice"},
	}, m.Players())
}

func TestMemory_PlayersIsSnapshot(t *testing.T) {
	var m roster.Memory
	m.Join(roster.Player{ID: "P1", Name: "alice"})

	snap := m.Players()
	snap[0].Name = "changed"

	assert.Equal(t, "alice", m.Players()[0].Name)
}

func TestStatic_Players(t *testing.T) {
	s := roster.Static{{ID: "P1", Name: "alice"}}
	got := s.Players()
	got[0].ID = "X"
	assert.Equal(t, "P1", s[0].ID)
}

func TestFile_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`players:
  - id: P1
    name: joksulainen
  - id: P2
    name: Big Bob
`), 0644))

	f, err := roster.NewFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []roster.Player{
		{ID: "P1", Name: "joksulainen"},
		{ID: "P2", Name: "Big Bob"},
	}, f.Players())
}

func TestFile_LoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"players": [{"id": "P1", "name": "joksulainen"}]}`), 0644))

	f, err := roster.NewFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []roster.Player{{ID: "P1", Name: "joksulainen"}}, f.Players())
}

func TestFile_MissingIsEmpty(t *testing.T) {
	f, err := roster.NewFile(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Empty(t, f.Players())
}

func TestFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("players: [unterminated"), 0644))

	_, err := roster.NewFile(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse roster")
}

func TestFile_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("players:\n  - id: P1\n    name: a\n"), 0644))

	f, err := roster.NewFile(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("players: [unterminated"), 0644))
	require.Error(t, f.Reload())
	assert.Equal(t, []roster.Player{{ID: "P1", Name: "a"}}, f.Players())
}

func TestFile_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("players: []\n"), 0644))

	f, err := roster.NewFile(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("players:\n  - id: P9\n    name: late\n"), 0644))

	require.Eventually(t, func() bool {
		return len(f.Players()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
