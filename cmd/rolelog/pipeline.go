package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/internal/config"
	"github.com/rolelog/rolelog-go/pkg/rolelog"
	"github.com/rolelog/rolelog-go/pkg/rolelog/roster"
)

// newRoster returns the configured roster. A roster file is reloaded on
// change for as long as ctx lives.
func newRoster(ctx context.Context, c *config.Config, log *zap.Logger) (roster.Roster, error) {
	if c.RosterFile == "" {
		log.Warn("no roster configured, actors will be recorded as " + rolelog.ServerLabel)
		return &roster.Memory{}, nil
	}
	f, err := roster.NewFile(c.RosterFile, log)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := f.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("roster watch stopped", zap.String("path", c.RosterFile), zap.Error(err))
		}
	}()
	return f, nil
}

// newPipeline builds the pipeline from configuration. observer may be nil.
func newPipeline(ctx context.Context, c *config.Config, log *zap.Logger, observer rolelog.Observer) (*rolelog.Pipeline, error) {
	r, err := newRoster(ctx, c, log)
	if err != nil {
		return nil, err
	}
	opts := append(c.PipelineOptions(),
		rolelog.WithRoster(r),
		rolelog.WithLogger(log),
	)
	if observer != nil {
		opts = append(opts, rolelog.WithObserver(observer))
	}
	return rolelog.NewPipeline(opts...)
}
