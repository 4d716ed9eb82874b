package rolelog

import "github.com/rolelog/rolelog-go/pkg/rolelog/roster"

// Resolver maps display names to the identities of connected players.
type Resolver struct {
	roster roster.Roster
}

// NewResolver returns a Resolver backed by r. A nil roster resolves nothing.
func NewResolver(r roster.Roster) *Resolver {
	return &Resolver{roster: r}
}

// Resolve returns the IDs of every connected player whose display name is
// exactly name, in roster order. Several players may share a name, so the
// result can hold any number of IDs. The roster is queried on every
// call; results are never cached.
func (r *Resolver) Resolve(name string) []string {
	if r == nil || r.roster == nil {
		return nil
	}

	var ids []string
	seen := make(map[string]struct{})
	for _, p := range r.roster.Players() {
		if p.Name != name {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}
