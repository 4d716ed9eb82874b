package rolelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/internal/celfilter"
	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

// Observer receives pipeline counters. internal/metrics provides a
// Prometheus implementation.
type Observer interface {
	LineProcessed()
	EventClassified(kind event.Kind, d Decision)
	RecordWritten()
	AppendFailed()
}

type nopObserver struct{}

func (nopObserver) LineProcessed()                        {}
func (nopObserver) EventClassified(event.Kind, Decision) {}
func (nopObserver) RecordWritten()                        {}
func (nopObserver) AppendFailed()                         {}

// Outcome describes what the pipeline did with one line.
type Outcome struct {
	// Event is nil when the line was not a role event.
	Event *Event
	// Decision is the filter decision for Event.
	Decision Decision
	// Names holds the resolved identities (empty when suppressed).
	Names Names
	// Record is the formatted record (empty when suppressed).
	Record string
	// Written is true when Record was appended successfully.
	Written bool
}

// Matched reports whether the line was a role event.
func (o Outcome) Matched() bool { return o.Event != nil }

// Pipeline classifies, filters, resolves, formats and persists log lines.
// Lines are independent: the pipeline keeps no state between them.
//
// Process is safe to call from one goroutine at a time; the Watcher feeds
// it sequentially so records are appended in log order.
type Pipeline struct {
	parser   Parser
	filter   *Filter
	resolver *Resolver
	appender Appender
	observer Observer
	log      *zap.Logger

	includeRawLine bool
}

// NewPipeline creates a pipeline. Unless WithAppender is given, records go
// to a Sink under the configured log directory, which is created and
// checked for writability here.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	cfg := applyPipelineOptions(opts)

	filter := NewFilter(cfg.ignoreRoles, cfg.emphasizeRoles)
	if cfg.suppressExpr != "" {
		expr, err := celfilter.Compile(cfg.suppressExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid suppress expression: %w", err)
		}
		filter.suppressWhen = expr
	}

	appender := cfg.appender
	if appender == nil {
		sink := NewSink(cfg.logDir)
		if err := sink.Check(); err != nil {
			return nil, fmt.Errorf("preparing log directory: %w", err)
		}
		appender = sink
	}

	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}
	observer := cfg.observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Pipeline{
		parser:         cfg.parser,
		filter:         filter,
		resolver:       NewResolver(cfg.roster),
		appender:       appender,
		observer:       observer,
		log:            log,
		includeRawLine: cfg.includeRawLine,
	}, nil
}

// Process runs one line through the pipeline.
//
// Lines that are not role events return a zero Outcome and nil error.
// A failed append returns the Outcome (Written=false) and an *AppendError;
// the caller is expected to report it and continue with the next line.
func (p *Pipeline) Process(ctx context.Context, line string) (Outcome, error) {
	p.observer.LineProcessed()
	line = strings.TrimRight(line, "\r")

	ev, err := p.parser.ParseLine(ctx, line)
	if err != nil {
		return Outcome{}, &ParseError{Line: line, Err: err}
	}
	if ev == nil {
		return Outcome{}, nil
	}
	if p.includeRawLine {
		ev.RawLine = line
	}

	decision, err := p.filter.Classify(ev)
	if err != nil {
		p.log.Warn("suppress expression failed, using role decision",
			zap.String("role", ev.Role), zap.Error(err))
	}
	out := Outcome{Event: ev, Decision: decision}
	p.observer.EventClassified(ev.Kind, out.Decision)

	if out.Decision == Suppress {
		p.log.Debug("role event suppressed",
			zap.String("kind", string(ev.Kind)),
			zap.String("role", ev.Role))
		return out, nil
	}

	out.Names.Actor = p.resolver.Resolve(ev.Actor)
	if ev.Kind == event.KindGrantRevoke && ev.TargetPresent {
		out.Names.Target = p.resolver.Resolve(ev.Target)
	}
	out.Record = Format(*ev, out.Names, out.Decision)

	date := ev.Timestamp.Date()
	if err := p.appender.Append(date, out.Record); err != nil {
		var appendErr *AppendError
		if !errors.As(err, &appendErr) {
			err = &AppendError{Date: date, Err: err}
		}
		p.observer.AppendFailed()
		p.log.Error("failed to append role record", zap.String("date", date), zap.Error(err))
		return out, err
	}
	out.Written = true
	p.observer.RecordWritten()

	p.log.Debug("role event recorded",
		zap.String("kind", string(ev.Kind)),
		zap.String("action", string(ev.Action)),
		zap.String("role", ev.Role),
		zap.String("decision", out.Decision.String()))
	return out, nil
}
