// Package config loads glowprofile settings from defaults, an optional
// YAML file, GLOWPROFILE_* environment variables and CLI flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/glowprofile/internal/engine"
)

// EnvPrefix prefixes every environment override, e.g. GLOWPROFILE_DB.
const EnvPrefix = "GLOWPROFILE"

// Keys.
const (
	KeyDB               = "db"
	KeySchema           = "schema"
	KeyLayout           = "layout"
	KeyDebounce         = "debounce"
	KeyAutoAdvanceDelay = "auto_advance_delay"
	KeyOnlyRequired     = "only_required"
	KeyLogLevel         = "log_level"
	KeyMetricsNamespace = "metrics_namespace"
)

// Config is the resolved configuration.
type Config struct {
	DB               string        `mapstructure:"db"`
	Schema           string        `mapstructure:"schema"` // empty: built-in schema
	Layout           string        `mapstructure:"layout"`
	Debounce         time.Duration `mapstructure:"debounce"`
	AutoAdvanceDelay time.Duration `mapstructure:"auto_advance_delay"`
	OnlyRequired     bool          `mapstructure:"only_required"`
	LogLevel         string        `mapstructure:"log_level"`
	MetricsNamespace string        `mapstructure:"metrics_namespace"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind CLI flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, "glowprofile.db")
	v.SetDefault(KeySchema, "")
	v.SetDefault(KeyLayout, string(engine.LayoutStepped))
	v.SetDefault(KeyDebounce, 100*time.Millisecond)
	v.SetDefault(KeyAutoAdvanceDelay, engine.DefaultAutoAdvanceDelay)
	v.SetDefault(KeyOnlyRequired, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetricsNamespace, "glowprofile")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path and resolves the
// configuration.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if _, err := engine.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("config: debounce must be positive, got %s", c.Debounce)
	}
	if c.AutoAdvanceDelay <= 0 {
		return fmt.Errorf("config: auto_advance_delay must be positive, got %s", c.AutoAdvanceDelay)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EngineLayout returns the configured layout.
func (c Config) EngineLayout() engine.Layout {
	l, _ := engine.ParseLayout(c.Layout)
	return l
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
	return l, nil
}
