// Package config loads error handler configuration from the environment and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler"
)

// Config holds the error handler configuration.
type Config struct {
	Sentry    SentryConfig
	Reporter  ReporterConfig
	Sanitizer SanitizerConfig
	Log       LogConfig
}

// SentryConfig configures the Sentry SDK.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
	SampleRate  float64
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// ReporterConfig configures the reporter.
type ReporterConfig struct {
	// ErrorViewerBaseURL is prefixed to the error ID to build the "link" context.
	ErrorViewerBaseURL string

	// SystemState adds memory/goroutine/uptime figures to every report.
	SystemState bool
}

// SanitizerConfig configures the context sanitizer.
type SanitizerConfig struct {
	// ClassDenyList holds fully-qualified type names whose values are redacted.
	ClassDenyList []string

	// MaxNestingLevel is the deepest level the sanitizer descends to.
	MaxNestingLevel int
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("errhandler")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.Debug = v.GetBool("sentry_debug")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")

	// Reporter
	cfg.Reporter.ErrorViewerBaseURL = v.GetString("error_viewer_base_url")
	cfg.Reporter.SystemState = v.GetBool("report_system_state")

	// Sanitizer
	cfg.Sanitizer.ClassDenyList = splitList(v.GetString("class_deny_list"))
	cfg.Sanitizer.MaxNestingLevel = v.GetInt("max_nesting_level")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Sentry defaults
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("sentry_environment", "development")
	v.SetDefault("sentry_release", "")
	v.SetDefault("sentry_debug", false)
	v.SetDefault("sentry_sample_rate", 1.0)

	// Reporter defaults
	v.SetDefault("error_viewer_base_url", "")
	v.SetDefault("report_system_state", false)

	// Sanitizer defaults
	v.SetDefault("class_deny_list", "")
	v.SetDefault("max_nesting_level", errhandler.MaxNestingLevel)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func validate(cfg *Config) error {
	if cfg.Sentry.SampleRate < 0 || cfg.Sentry.SampleRate > 1 {
		return fmt.Errorf("sentry sample rate must be between 0 and 1, got %v", cfg.Sentry.SampleRate)
	}
	if cfg.Sanitizer.MaxNestingLevel < 0 {
		return fmt.Errorf("max nesting level must not be negative, got %d", cfg.Sanitizer.MaxNestingLevel)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewSanitizer builds the sanitizer described by the config.
func (c SanitizerConfig) NewSanitizer() *errhandler.Sanitizer {
	return errhandler.NewSanitizer(c.ClassDenyList...).WithMaxNestingLevel(c.MaxNestingLevel)
}
