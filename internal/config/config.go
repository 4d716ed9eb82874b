// Package config loads rolelog settings from a YAML file, ROLELOG_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/rolelog/rolelog-go/internal/logfinder"
	"github.com/rolelog/rolelog-go/pkg/rolelog"
)

// EnvPrefix prefixes environment overrides: log_dir is read from
// ROLELOG_LOG_DIR, update.url from ROLELOG_UPDATE_URL.
const EnvPrefix = "ROLELOG"

// DefaultConfigName is the config file searched for in the working
// directory when no explicit file is given.
const DefaultConfigName = "rolelog"

// UpdateConfig holds update notifier settings.
type UpdateConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Interval time.Duration `mapstructure:"interval"`
}

// Config is the complete rolelog configuration.
type Config struct {
	ServerLog        string        `mapstructure:"server_log"`
	ServerLogDir     string        `mapstructure:"server_log_dir"`
	ServerLogPattern string        `mapstructure:"server_log_pattern"`
	LogDir           string        `mapstructure:"log_dir"`
	IgnoreRoles      []string      `mapstructure:"ignore_roles"`
	EmphasizeRoles   []string      `mapstructure:"emphasize_roles"`
	SuppressExpr     string        `mapstructure:"suppress_expr"`
	RosterFile       string        `mapstructure:"roster_file"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Update           UpdateConfig  `mapstructure:"update"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server_log", "")
	v.SetDefault("server_log_dir", "")
	v.SetDefault("server_log_pattern", logfinder.DefaultPattern)
	v.SetDefault("log_dir", rolelog.DefaultLogDir)
	v.SetDefault("ignore_roles", []string{})
	v.SetDefault("emphasize_roles", []string{})
	v.SetDefault("suppress_expr", "")
	v.SetDefault("roster_file", "")
	v.SetDefault("poll_interval", "2s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("update.enabled", false)
	v.SetDefault("update.url", "")
	v.SetDefault("update.interval", "1h")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v and returns the validated
// configuration. With an empty path, rolelog.yaml in the working directory
// is used if present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and combinations.
func (c *Config) Validate() error {
	if c.ServerLog != "" && c.ServerLogDir != "" {
		return errors.New("server_log and server_log_dir are mutually exclusive")
	}
	if err := logfinder.ValidatePattern(c.ServerLogPattern); err != nil {
		return fmt.Errorf("server_log_pattern: %w", err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log_format %q (use json or console)", c.LogFormat)
	}
	if c.Update.Enabled {
		if c.Update.URL == "" {
			return errors.New("update.url is required when update.enabled is set")
		}
		if c.Update.Interval <= 0 {
			return fmt.Errorf("update.interval must be positive, got %v", c.Update.Interval)
		}
	}
	return nil
}

// PipelineOptions returns the pipeline options the configuration implies.
// The roster, logger and observer are wired by the caller.
func (c *Config) PipelineOptions() []rolelog.PipelineOption {
	return []rolelog.PipelineOption{
		rolelog.WithLogDir(c.LogDir),
		rolelog.WithIgnoreRoles(c.IgnoreRoles...),
		rolelog.WithEmphasizeRoles(c.EmphasizeRoles...),
		rolelog.WithSuppressExpr(c.SuppressExpr),
	}
}

// WatchOptions returns the watcher options the configuration implies.
func (c *Config) WatchOptions() []rolelog.WatchOption {
	return []rolelog.WatchOption{
		rolelog.WithServerLog(c.ServerLog),
		rolelog.WithServerLogDir(c.ServerLogDir),
		rolelog.WithServerLogPattern(c.ServerLogPattern),
		rolelog.WithPollInterval(c.PollInterval),
	}
}
