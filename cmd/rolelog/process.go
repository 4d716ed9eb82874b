package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/pkg/rolelog"
)

var (
	// process flags
	since       string
	stopOnError bool
)

var processCmd = &cobra.Command{
	Use:   "process <server-log>...",
	Short: "Record role events from existing server logs",
	Long: `Run existing server log files through the pipeline once, in order.

Records are appended like in watch mode, so processing a file twice writes
its records twice.

Examples:
  # Backfill from an old log
  rolelog process Saved/Logs/Brickadia-backup-2025.07.16.log

  # Only events from a given time on (RFC3339)
  rolelog process Brickadia.log --since 2025-07-17T00:00:00Z`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&since, "since", "",
		"skip events before this time (RFC3339 format, e.g., 2025-07-17T12:00:00Z)")
	processCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false,
		"stop at the first record that cannot be written")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	var opts []rolelog.ProcessOption
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("invalid --since format: %w", err)
		}
		opts = append(opts, rolelog.WithSince(t))
	}
	opts = append(opts, rolelog.WithStopOnError(stopOnError))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	var total rolelog.Stats
	var failed bool
	for _, path := range args {
		stats, err := rolelog.ProcessFile(ctx, path, p, opts...)
		total = addStats(total, stats)
		logger.Info("processed server log",
			zap.String("path", path),
			zap.Int("lines", stats.Lines),
			zap.Int("events", stats.Events),
			zap.Int("written", stats.Written),
			zap.Int("suppressed", stats.Suppressed),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed))
		if err != nil {
			failed = true
			logger.Error("processing failed", zap.String("path", path), zap.Error(err))
			if stopOnError || ctx.Err() != nil {
				break
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d lines, %d events: %d written, %d suppressed, %d skipped, %d failed\n",
		total.Lines, total.Events, total.Written, total.Suppressed, total.Skipped, total.Failed)
	if failed {
		return fmt.Errorf("not all server logs were processed")
	}
	return nil
}

func addStats(a, b rolelog.Stats) rolelog.Stats {
	return rolelog.Stats{
		Lines:      a.Lines + b.Lines,
		Events:     a.Events + b.Events,
		Written:    a.Written + b.Written,
		Suppressed: a.Suppressed + b.Suppressed,
		Failed:     a.Failed + b.Failed,
		Skipped:    a.Skipped + b.Skipped,
	}
}
