package rolelog

import (
	"strings"

	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

// Emphasis markers wrapped around records of emphasized roles. They are ANSI
// SGR sequences (bold yellow, then reset), so `less -R`, `cat` and `tail -f`
// in a terminal highlight the line.
const (
	EmphasisStart = "\x1b[1;33m"
	EmphasisEnd   = "\x1b[0m"
)

// ServerLabel is written in place of an actor identity list when the actor
// matches no connected player, which is the case for actions taken from the
// server console.
const ServerLabel = "[SERVER]"

// Names holds the identities resolved for an event's display names.
type Names struct {
	// Target is nil when resolution was skipped (target not present).
	Target []string
	Actor  []string
}

// Format renders ev as a single newline-terminated record.
//
//	[2025.07.17-07.48.43:644] bob [P2] has become Moderator (granted by alice [P1])
//	[2025.07.17-10.09.56:565] alice [P1] created the New Role 1 role
//
// A target flagged "not present" is written by display name only. An actor
// with no resolved identities is written with ServerLabel. Format must not be
// called with Suppress.
func Format(ev Event, names Names, d Decision) string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(string(ev.Timestamp))
	sb.WriteString("] ")

	switch ev.Kind {
	case event.KindGrantRevoke:
		sb.WriteString(ev.Target)
		if ev.TargetPresent {
			sb.WriteByte(' ')
			sb.WriteString(identityList(names.Target))
		}
		sb.WriteByte(' ')
		sb.WriteString(ev.Verb())
		sb.WriteByte(' ')
		sb.WriteString(ev.Role)
		sb.WriteString(" (")
		sb.WriteString(string(ev.Action))
		sb.WriteString(" by ")
		sb.WriteString(ev.Actor)
		sb.WriteByte(' ')
		sb.WriteString(actorList(names.Actor))
		sb.WriteByte(')')
	case event.KindManage:
		sb.WriteString(ev.Actor)
		sb.WriteByte(' ')
		sb.WriteString(actorList(names.Actor))
		sb.WriteByte(' ')
		sb.WriteString(string(ev.Action))
		sb.WriteString(" the ")
		sb.WriteString(ev.Role)
		sb.WriteString(" role")
	}

	record := sb.String()
	if d == EmitEmphasized {
		record = EmphasisStart + record + EmphasisEnd
	}
	return record + "\n"
}

func identityList(ids []string) string {
	return "[" + strings.Join(ids, ", ") + "]"
}

func actorList(ids []string) string {
	if len(ids) == 0 {
		return ServerLabel
	}
	return identityList(ids)
}
