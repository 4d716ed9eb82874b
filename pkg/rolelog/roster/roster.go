// Package roster provides snapshots of the players currently connected to a
// server. A roster is the collaborator used to turn display names into
// player identities.
package roster

import "sync"

// Player is a connected player.
type Player struct {
	// ID is the stable account identifier.
	ID string `json:"id" yaml:"id"`
	// Name is the display name, which is not unique.
	Name string `json:"name" yaml:"name"`
}

// Roster returns a snapshot of connected players in connection order.
// Implementations must be safe for concurrent use.
type Roster interface {
	Players() []Player
}

// Static is a fixed roster, mainly useful for tests and one-off processing.
type Static []Player

// Players implements Roster.
func (s Static) Players() []Player {
	out := make([]Player, len(s))
	copy(out, s)
	return out
}

// Memory is a roster maintained by the host through Join and Leave.
// The zero value is an empty roster ready for use.
type Memory struct {
	mu      sync.RWMutex
	players []Player
}

// Join adds a player. A player that is already connected is moved to the end,
// matching a reconnect.
func (m *Memory) Join(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = removeID(m.players, p.ID)
	m.players = append(m.players, p)
}

// Leave removes the player with the given ID. Unknown IDs are ignored.
func (m *Memory) Leave(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = removeID(m.players, id)
}

// Players implements Roster.
func (m *Memory) Players() []Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Player, len(m.players))
	copy(out, m.players)
	return out
}

func removeID(players []Player, id string) []Player {
	for i, p := range players {
		if p.ID == id {
			return append(players[:i], players[i+1:]...)
		}
	}
	return players
}

var (
	_ Roster = Static(nil)
	_ Roster = (*Memory)(nil)
	_ Roster = (*File)(nil)
)
