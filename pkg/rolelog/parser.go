package rolelog

import (
	"context"

	"github.com/rolelog/rolelog-go/internal/parser"
	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

// Event is a classified role event. See the event package for field usage.
type Event = event.Event

// Timestamp is a server log timestamp.
type Timestamp = event.Timestamp

// Parser classifies a single log line.
type Parser interface {
	// ParseLine returns the event for a recognized line and nil for any
	// other line. An error is returned only for unexpected failures.
	ParseLine(ctx context.Context, line string) (*Event, error)
}

// ParserFunc is an adapter to allow ordinary functions to be used as Parsers.
type ParserFunc func(ctx context.Context, line string) (*Event, error)

// ParseLine implements the Parser interface.
func (f ParserFunc) ParseLine(ctx context.Context, line string) (*Event, error) {
	return f(ctx, line)
}

// DefaultParser recognizes role grant/revoke and role management lines.
type DefaultParser struct{}

// ParseLine implements the Parser interface.
func (DefaultParser) ParseLine(ctx context.Context, line string) (*Event, error) {
	return parser.Parse(line), nil
}

// ParseLine classifies a single server log line.
//
// Example:
//
//	line := "[2025.07.17-07.48.43:644][996]LogChat: bob has become Moderator (granted by alice)"
//	if ev := rolelog.ParseLine(line); ev != nil {
//	    fmt.Println(ev.Target, ev.Action, ev.Role)
//	}
func ParseLine(line string) *Event {
	return parser.Parse(line)
}

// Ensure DefaultParser implements Parser.
var _ Parser = DefaultParser{}
