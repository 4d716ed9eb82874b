package rolelog

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rolelog/rolelog-go/internal/logfinder"
	"github.com/rolelog/rolelog-go/pkg/rolelog/roster"
)

// PipelineOption configures a Pipeline using the functional options pattern.
type PipelineOption func(*pipelineConfig)

// pipelineConfig holds internal configuration for the pipeline.
type pipelineConfig struct {
	logDir         string
	appender       Appender
	roster         roster.Roster
	ignoreRoles    []string
	emphasizeRoles []string
	suppressExpr   string
	parser         Parser
	logger         *zap.Logger
	observer       Observer
	includeRawLine bool
}

// defaultPipelineConfig returns a pipelineConfig with sensible defaults.
func defaultPipelineConfig() *pipelineConfig {
	return &pipelineConfig{
		logDir: DefaultLogDir,
		parser: DefaultParser{},
	}
}

// applyPipelineOptions applies functional options to a pipelineConfig.
func applyPipelineOptions(opts []PipelineOption) *pipelineConfig {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogDir sets the directory date-partitioned record files are written to.
// Default: ./logs/roles.
func WithLogDir(dir string) PipelineOption {
	return func(c *pipelineConfig) {
		if dir != "" {
			c.logDir = dir
		}
	}
}

// WithAppender replaces the file Sink, e.g. with an in-memory recorder.
func WithAppender(a Appender) PipelineOption {
	return func(c *pipelineConfig) {
		c.appender = a
	}
}

// WithRoster sets the roster used to resolve display names.
// Without a roster no name resolves and every actor is written as [SERVER].
func WithRoster(r roster.Roster) PipelineOption {
	return func(c *pipelineConfig) {
		c.roster = r
	}
}

// WithIgnoreRoles suppresses events for the given roles.
func WithIgnoreRoles(roles ...string) PipelineOption {
	return func(c *pipelineConfig) {
		c.ignoreRoles = append([]string(nil), roles...)
	}
}

// WithEmphasizeRoles writes events for the given roles emphasized.
// Emphasis takes precedence over WithIgnoreRoles.
func WithEmphasizeRoles(roles ...string) PipelineOption {
	return func(c *pipelineConfig) {
		c.emphasizeRoles = append([]string(nil), roles...)
	}
}

// WithSuppressExpr suppresses events matching a CEL expression over the
// event fields (kind, action, role, actor, target, target_present, date).
// Emphasized roles are never suppressed. The expression is compiled by
// NewPipeline.
//
//	rolelog.WithSuppressExpr(`role.startsWith("Temp") && action == "granted"`)
func WithSuppressExpr(expr string) PipelineOption {
	return func(c *pipelineConfig) {
		c.suppressExpr = expr
	}
}

// WithParser sets a custom parser. If p is nil, this option has no effect.
func WithParser(p Parser) PipelineOption {
	return func(c *pipelineConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithLogger sets the logger. If logger is nil, logging is disabled (default).
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// WithObserver sets the receiver of pipeline counters.
func WithObserver(o Observer) PipelineOption {
	return func(c *pipelineConfig) {
		c.observer = o
	}
}

// WithIncludeRawLine includes the original log line in Event.RawLine.
// Default: false.
func WithIncludeRawLine(include bool) PipelineOption {
	return func(c *pipelineConfig) {
		c.includeRawLine = include
	}
}

// WatchOption configures a Watcher.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	serverLog        string
	serverLogDir     string
	serverLogPattern string
	pollInterval     time.Duration
	replayFromStart  bool
	waitForLogs      bool
	logger           *zap.Logger
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		serverLogPattern: logfinder.DefaultPattern,
		pollInterval:     2 * time.Second,
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *watchConfig) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.serverLog != "" && c.serverLogDir != "" {
		return fmt.Errorf("server log file and server log directory are mutually exclusive")
	}
	if err := logfinder.ValidatePattern(c.serverLogPattern); err != nil {
		return err
	}
	return nil
}

// WithServerLog follows one specific server log file. Rotation detection is
// disabled in this mode.
func WithServerLog(path string) WatchOption {
	return func(c *watchConfig) {
		c.serverLog = path
	}
}

// WithServerLogDir sets the server log directory. The newest file matching
// the server log pattern is followed, switching when a newer one appears.
// If not set, the directory comes from ROLELOG_SERVER_LOG_DIR or the
// default Brickadia locations.
func WithServerLogDir(dir string) WatchOption {
	return func(c *watchConfig) {
		c.serverLogDir = dir
	}
}

// WithServerLogPattern sets the glob (doublestar syntax) used to find server
// log files in the log directory. Default: "*.log".
func WithServerLogPattern(pattern string) WatchOption {
	return func(c *watchConfig) {
		if pattern != "" {
			c.serverLogPattern = pattern
		}
	}
}

// WithPollInterval sets how often to check for a newer server log file.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithReplayFromStart processes the existing content of the server log
// before following new lines. Records already written by a previous run are
// appended again.
func WithReplayFromStart() WatchOption {
	return func(c *watchConfig) {
		c.replayFromStart = true
	}
}

// WithWaitForLogs waits for a server log file to appear instead of failing
// when the directory holds none yet (starting before the server).
func WithWaitForLogs(wait bool) WatchOption {
	return func(c *watchConfig) {
		c.waitForLogs = wait
	}
}

// WithWatchLogger sets the watcher's logger. Nil disables logging (default).
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}
