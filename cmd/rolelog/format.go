package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rolelog/rolelog-go/pkg/rolelog"
)

// validFormats lists the echo formats for recorded events.
var validFormats = map[string]bool{
	"none":   true,
	"jsonl":  true,
	"pretty": true,
}

var (
	styleEmphasis = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true) // yellow bold
	styleFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))            // red
	styleMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// outcomeJSON is the JSON Lines shape of an echoed outcome.
type outcomeJSON struct {
	*rolelog.Event
	Decision  string   `json:"decision"`
	TargetIDs []string `json:"target_ids,omitempty"`
	ActorIDs  []string `json:"actor_ids"`
	Record    string   `json:"record,omitempty"`
	Written   bool     `json:"written"`
}

// outputOutcome echoes an outcome in the given format.
func outputOutcome(format string, out rolelog.Outcome, w io.Writer) error {
	switch format {
	case "none":
		return nil
	case "jsonl":
		return outputJSON(out, w)
	case "pretty":
		return outputPretty(out, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func outputJSON(out rolelog.Outcome, w io.Writer) error {
	data, err := json.Marshal(outcomeJSON{
		Event:     out.Event,
		Decision:  out.Decision.String(),
		TargetIDs: out.Names.Target,
		ActorIDs:  out.Names.Actor,
		Record:    plainRecord(out.Record),
		Written:   out.Written,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func outputPretty(out rolelog.Outcome, w io.Writer) error {
	var line string
	switch {
	case out.Decision == rolelog.Suppress:
		line = styleMuted.Render(fmt.Sprintf("[%s] - %s (suppressed)", out.Event.Timestamp, out.Event.Role))
	case !out.Written:
		line = styleFailed.Render("! " + plainRecord(out.Record))
	case out.Decision == rolelog.EmitEmphasized:
		line = styleEmphasis.Render(plainRecord(out.Record))
	default:
		line = plainRecord(out.Record)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// plainRecord strips the emphasis markers and the trailing newline.
func plainRecord(record string) string {
	record = strings.TrimSuffix(record, "\n")
	record = strings.TrimPrefix(record, rolelog.EmphasisStart)
	return strings.TrimSuffix(record, rolelog.EmphasisEnd)
}
