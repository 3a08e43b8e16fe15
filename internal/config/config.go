// Package config provides layered configuration loading.
//
// Precedence, lowest first: defaults, config file, environment, flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is where the todo service listens unless told otherwise.
const DefaultBaseURL = "http://localhost:5000"

// Config holds the resolved configuration.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Theme    string
	LogLevel string
	LogFile  string
	NoColor  bool

	// Sources tracks where each value came from.
	Sources map[string]Source
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values. Zero values mean unset.
type FlagOverrides struct {
	BaseURL string
	Timeout time.Duration
	Theme   string
	Verbose bool
	NoColor bool
}

// fileConfig mirrors the YAML file; pointers distinguish unset from zero.
type fileConfig struct {
	BaseURL  *string `yaml:"base_url"`
	Timeout  *string `yaml:"timeout"`
	Theme    *string `yaml:"theme"`
	LogLevel *string `yaml:"log_level"`
	LogFile  *string `yaml:"log_file"`
	NoColor  *bool   `yaml:"no_color"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  30 * time.Second,
		Theme:    "classic",
		LogLevel: "warn",
		Sources:  map[string]Source{},
	}
	for _, k := range []string{"base_url", "timeout", "theme", "log_level"} {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}

// Path returns the default config file location.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "todo", "config.yaml")
}

// Load resolves the configuration. path may be empty to use Path(); a
// missing file is not an error, a malformed one is.
func Load(path string, flags FlagOverrides) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if path != "" {
		// only an explicitly requested file has to exist
		err := loadFromFile(cfg, path)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
		cfg.Sources["base_url"] = SourceFile
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("parse config %s: timeout: %w", path, err)
		}
		cfg.Timeout = d
		cfg.Sources["timeout"] = SourceFile
	}
	if fc.Theme != nil {
		cfg.Theme = *fc.Theme
		cfg.Sources["theme"] = SourceFile
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
		cfg.Sources["log_level"] = SourceFile
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
		cfg.Sources["log_file"] = SourceFile
	}
	if fc.NoColor != nil {
		cfg.NoColor = *fc.NoColor
		cfg.Sources["no_color"] = SourceFile
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TODO_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = SourceEnv
	}
	if v := os.Getenv("TODO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TODO_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
		cfg.Sources["timeout"] = SourceEnv
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.Theme = v
		cfg.Sources["theme"] = SourceEnv
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		cfg.Sources["log_level"] = SourceEnv
	}
	if v := os.Getenv("TODO_LOG_FILE"); v != "" {
		cfg.LogFile = v
		cfg.Sources["log_file"] = SourceEnv
	}
	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
		cfg.Sources["no_color"] = SourceEnv
	}
	return nil
}

func applyFlags(cfg *Config, f FlagOverrides) {
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
		cfg.Sources["base_url"] = SourceFlag
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
		cfg.Sources["timeout"] = SourceFlag
	}
	if f.Theme != "" {
		cfg.Theme = f.Theme
		cfg.Sources["theme"] = SourceFlag
	}
	if f.Verbose {
		cfg.LogLevel = "debug"
		cfg.Sources["log_level"] = SourceFlag
	}
	if f.NoColor {
		cfg.NoColor = true
		cfg.Sources["no_color"] = SourceFlag
	}
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Marshal renders the resolved configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	out := struct {
		BaseURL  string `yaml:"base_url"`
		Timeout  string `yaml:"timeout"`
		Theme    string `yaml:"theme"`
		LogLevel string `yaml:"log_level"`
		LogFile  string `yaml:"log_file,omitempty"`
		NoColor  bool   `yaml:"no_color"`
	}{c.BaseURL, c.Timeout.String(), c.Theme, c.LogLevel, c.LogFile, c.NoColor}
	return yaml.Marshal(out)
}
