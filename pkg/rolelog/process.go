package rolelog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rolelog/rolelog-go/internal/parser"
	"github.com/rolelog/rolelog-go/internal/safefile"
)

// maxLineBytes bounds a single server log line during batch processing.
const maxLineBytes = 512 * 1024

// Stats summarizes a ProcessFile run.
type Stats struct {
	Lines      int
	Events     int
	Written    int
	Suppressed int
	Failed     int
	Skipped    int // role lines before the Since bound
}

// ProcessOption configures ProcessFile.
type ProcessOption func(*processConfig)

type processConfig struct {
	since       time.Time
	stopOnError bool
}

// WithSince skips lines whose timestamp is before since.
func WithSince(since time.Time) ProcessOption {
	return func(c *processConfig) {
		c.since = since
	}
}

// WithStopOnError stops at the first failed append instead of continuing.
func WithStopOnError(stop bool) ProcessOption {
	return func(c *processConfig) {
		c.stopOnError = stop
	}
}

// ProcessFile runs every line of an existing server log through p, in order.
//
// Failed appends are collected and returned joined at the end unless
// WithStopOnError is set. Running the same file twice appends its records
// twice.
func ProcessFile(ctx context.Context, path string, p *Pipeline, opts ...ProcessOption) (Stats, error) {
	var cfg processConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var stats Stats
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return stats, fmt.Errorf("opening server log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var errs []error
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := scanner.Text()
		stats.Lines++

		if !cfg.since.IsZero() && before(line, cfg.since) {
			if parser.Parse(line) != nil {
				stats.Skipped++
			}
			continue
		}

		out, err := p.Process(ctx, line)
		if out.Matched() {
			stats.Events++
			switch {
			case out.Written:
				stats.Written++
			case out.Decision == Suppress:
				stats.Suppressed++
			}
		}
		if err != nil {
			stats.Failed++
			if cfg.stopOnError {
				return stats, err
			}
			errs = append(errs, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading server log: %w", err)
	}

	return stats, errors.Join(errs...)
}

// before reports whether line carries a timestamp earlier than since.
// Lines without a parseable timestamp are never skipped.
func before(line string, since time.Time) bool {
	ts, ok := parser.Timestamp(line)
	if !ok {
		return false
	}
	t, err := ts.Time()
	if err != nil {
		return false
	}
	return t.Before(since)
}
