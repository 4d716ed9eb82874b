// Package event defines the role administration events recognized in
// Brickadia server logs.
package event

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies which of the two recognized line shapes produced an event.
type Kind string

const (
	// KindGrantRevoke is a role granted to or revoked from a player.
	KindGrantRevoke Kind = "role_grant_revoke"
	// KindManage is a role definition created, updated or removed.
	KindManage Kind = "role_manage"
)

// Action is the verb reported by the server for an event.
type Action string

const (
	ActionGrant   Action = "granted"
	ActionRevoke  Action = "revoked"
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

// Timestamp is a server log timestamp: "YYYY.MM.DD-HH.MM.SS:mmm".
type Timestamp string

// TimestampLayout is the Go layout of the first 19 characters of a Timestamp.
// The trailing ":mmm" milliseconds use a separator Go layouts cannot express.
const TimestampLayout = "2006.01.02-15.04.05"

// Date returns the "YYYY.MM.DD" portion used to pick the destination file.
func (ts Timestamp) Date() string {
	if len(ts) < 10 {
		return ""
	}
	return string(ts[:10])
}

// Time parses the timestamp. Server logs are written in UTC.
func (ts Timestamp) Time() (time.Time, error) {
	s := string(ts)
	if len(s) != 23 || s[19] != ':' {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	t, err := time.ParseInLocation(TimestampLayout, s[:19], time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.Atoi(s[20:])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed milliseconds in %q: %w", s, err)
	}
	return t.Add(time.Duration(ms) * time.Millisecond), nil
}

// Event is a classified role event.
//
// Fields used by each kind:
//   - KindGrantRevoke: Target, TargetPresent, Phrase, Action (ActionGrant|ActionRevoke), Role, Actor
//   - KindManage: Actor, Action (ActionCreated|ActionUpdated|ActionRemoved), Role
//
// Actor and Target are raw display names; several players may share one.
type Event struct {
	Kind          Kind      `json:"kind"`
	Timestamp     Timestamp `json:"timestamp"`
	Action        Action    `json:"action"`
	Role          string    `json:"role"`
	Actor         string    `json:"actor"`
	Target        string    `json:"target,omitempty"`
	TargetPresent bool      `json:"target_present,omitempty"`
	// Phrase is the verb phrase as written by the server ("has become" or
	// "is no longer"). It normally agrees with Action but is kept verbatim.
	Phrase string `json:"phrase,omitempty"`

	// RawLine is the original log line (only populated when requested).
	RawLine string `json:"raw_line,omitempty"`
}

// Verb returns the phrase between target and role for grant/revoke events.
// It is Phrase when set, otherwise the phrase implied by Action.
func (e Event) Verb() string {
	if e.Phrase != "" {
		return e.Phrase
	}
	if e.Action == ActionRevoke {
		return "is no longer"
	}
	return "has become"
}
