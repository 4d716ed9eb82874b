package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/internal/metrics"
	"github.com/rolelog/rolelog-go/internal/update"
	"github.com/rolelog/rolelog-go/pkg/rolelog"
)

var (
	// watch flags
	echoFormat string
	replay     bool
	waitLogs   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the server log and record role events",
	Long: `Follow the newest Brickadia server log and append a record for every role
event to <log-dir>/<YYYY.MM.DD>.log. When a newer server log appears in the
directory, rolelog switches to it.

Examples:
  # Auto-detect the server log directory
  rolelog watch

  # Follow a specific directory, highlight admin changes
  rolelog watch --server-log-dir /srv/brickadia/Saved/Logs --emphasize Admin

  # Resolve player identities from a roster file kept by the server host
  rolelog watch --roster players.yaml

  # Echo records to the terminal as they are written
  rolelog watch --echo pretty

  # Expose Prometheus counters
  rolelog watch --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.String("server-log", "", "follow this server log file (disables rotation)")
	f.StringP("server-log-dir", "d", "", "server log directory (auto-detected if not specified)")
	f.String("pattern", "", `server log file glob (default "*.log")`)
	f.Duration("poll-interval", 0, "how often to check for a newer server log (default 2s)")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	f.StringVar(&echoFormat, "echo", "none", "echo recorded events: none, jsonl, pretty")
	f.BoolVar(&replay, "replay", false, "process the existing server log content first (records may repeat)")
	f.BoolVar(&waitLogs, "wait", false, "wait for a server log to appear instead of failing")

	bindFlags(f, map[string]string{
		"server_log":         "server-log",
		"server_log_dir":     "server-log-dir",
		"server_log_pattern": "pattern",
		"poll_interval":      "poll-interval",
		"metrics_addr":       "metrics-addr",
	})

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !validFormats[echoFormat] {
		return fmt.Errorf("invalid --echo %q (use none, jsonl or pretty)", echoFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var observer rolelog.Observer
	if cfg.MetricsAddr != "" {
		m := metrics.New()
		observer = m
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	if cfg.Update.Enabled {
		startUpdateChecker(ctx)
	}

	p, err := newPipeline(ctx, cfg, logger, observer)
	if err != nil {
		return err
	}

	opts := append(cfg.WatchOptions(),
		rolelog.WithWaitForLogs(waitLogs),
		rolelog.WithWatchLogger(logger),
	)
	if replay {
		opts = append(opts, rolelog.WithReplayFromStart())
	}
	watcher, err := rolelog.NewWatcher(p, opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	outcomes, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("recording role events", zap.String("log_dir", cfg.LogDir))

	return drainWatch(ctx, outcomes, errs, cmd.OutOrStdout())
}

// drainWatch echoes outcomes and logs errors until both channels close.
// The watcher only stops on its own after a fatal error, so unless ctx was
// cancelled the first *WatchError is returned.
func drainWatch(ctx context.Context, outcomes <-chan rolelog.Outcome, errs <-chan error, out io.Writer) error {
	var fatal error
	for outcomes != nil || errs != nil {
		select {
		case o, ok := <-outcomes:
			if !ok {
				outcomes = nil
				continue
			}
			if err := outputOutcome(echoFormat, o, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var watchErr *rolelog.WatchError
			if errors.As(err, &watchErr) {
				logger.Error("watch failed", zap.Error(err))
				if fatal == nil && watchErr.Op != rolelog.WatchOpRotation {
					fatal = err
				}
				continue
			}
			logger.Warn("line not recorded", zap.Error(err))
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if fatal != nil {
		return fatal
	}
	return errors.New("watcher stopped unexpectedly")
}

func startUpdateChecker(ctx context.Context) {
	checker, err := update.New(cfg.Update.URL, version,
		update.WithInterval(cfg.Update.Interval),
		update.WithLogger(logger),
	)
	if err != nil {
		logger.Debug("update checks disabled", zap.Error(err))
		return
	}
	go checker.Run(ctx)
}
