// Command rolelog records role administration events from a Brickadia
// server log into date-partitioned files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rolelog/rolelog-go/internal/config"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

var (
	cfgFile string

	v      = config.New()
	cfg    *config.Config
	logger = zap.NewNop()
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "rolelog",
	Short: "Record Brickadia role events to date-partitioned logs",
	Long: `rolelog follows a Brickadia server log and writes a line for every role
granted, revoked, created, updated or removed to logs/roles/<YYYY.MM.DD>.log.

Settings are read from rolelog.yaml (or --config), ROLELOG_* environment
variables and flags, flags taking precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: ./rolelog.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console, json")
	pf.StringP("log-dir", "o", "", "directory for role log files (default ./logs/roles)")
	pf.StringSlice("ignore", nil, "roles whose events are not recorded (comma-separated)")
	pf.StringSlice("emphasize", nil, "roles whose events are highlighted (comma-separated)")
	pf.String("suppress-expr", "", `CEL expression; matching events are not recorded (e.g. 'actor == "bot"')`)
	pf.String("roster", "", "player roster file (YAML or JSON), reloaded on change")

	bindFlags(pf, map[string]string{
		"log_level":       "log-level",
		"log_format":      "log-format",
		"log_dir":         "log-dir",
		"ignore_roles":    "ignore",
		"emphasize_roles": "emphasize",
		"suppress_expr":   "suppress-expr",
		"roster_file":     "roster",
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags binds config keys to flags, so a flag overrides the file and
// environment only when set.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		cobra.CheckErr(v.BindPFlag(key, fs.Lookup(name)))
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfig] == "true" {
		return nil
	}
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	l, err := initLogger(loaded.LogLevel, loaded.LogFormat)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	return nil
}

// initLogger creates a configured zap logger writing to stderr.
func initLogger(level string, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var loggerConfig zap.Config
	if format == "json" {
		loggerConfig = zap.NewProductionConfig()
	} else {
		loggerConfig = zap.NewDevelopmentConfig()
	}

	loggerConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	loggerConfig.OutputPaths = []string{"stderr"}

	return loggerConfig.Build()
}
