// Package parser provides Brickadia server log line classification.
package parser

import (
	"strings"

	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

// Parse classifies a server log line.
//
// Returns the event for a recognized role line, or nil for everything else:
// lines without the "[timestamp][frame]" prefix (multi-line continuations),
// ordinary chat, and any other server output.
func Parse(line string) *event.Event {
	// Trim trailing CR for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r")

	match := timestampPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	ts := event.Timestamp(match[1])
	rest := line[len(match[0]):]

	// One line reports exactly one event, so the first match wins.
	if ev := parseGrantRevoke(rest, ts); ev != nil {
		return ev
	}
	if ev := parseRoleManage(rest, ts); ev != nil {
		return ev
	}

	return nil
}

// Timestamp extracts the timestamp prefix of a line, if present.
func Timestamp(line string) (event.Timestamp, bool) {
	match := timestampPattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return event.Timestamp(match[1]), true
}

func parseGrantRevoke(rest string, ts event.Timestamp) *event.Event {
	match := grantRevokePattern.FindStringSubmatch(rest)
	if match == nil {
		return nil
	}

	// The phrase is kept as written even when it disagrees with the action.
	return &event.Event{
		Kind:          event.KindGrantRevoke,
		Timestamp:     ts,
		Target:        match[1],
		TargetPresent: match[2] == "",
		Phrase:        match[3],
		Action:        event.Action(match[5]),
		Role:          match[4],
		Actor:         match[6],
	}
}

func parseRoleManage(rest string, ts event.Timestamp) *event.Event {
	match := roleManagePattern.FindStringSubmatch(rest)
	if match == nil {
		return nil
	}

	return &event.Event{
		Kind:      event.KindManage,
		Timestamp: ts,
		Actor:     match[1],
		Action:    event.Action(match[2]),
		Role:      match[3],
	}
}
