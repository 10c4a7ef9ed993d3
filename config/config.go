// Package config holds the monitor's runtime settings. The tool runs
// with built-in defaults when no config file exists, so a bare binary
// behaves exactly like the fixed-constant diagnostic it replaces.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"xuimon/strutil"
)

// Defaults for a config-less run.
const (
	DefaultDBPath        = "/etc/x-ui/x-ui.db"
	DefaultIntervalSecs  = 2
	DefaultBusyTimeoutMS = 2000
	DefaultRetentionDays = 7
)

// UI modes.
const (
	ModePlain     = "plain"
	ModeDashboard = "dashboard"
)

// Config represents the complete monitor configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`

	// LoadedFrom records where the config came from; empty for built-in
	// defaults.
	LoadedFrom string `yaml:"-"`
}

// DatabaseConfig locates the panel database.
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// MonitorConfig controls the polling loop.
type MonitorConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// UIConfig selects the output surface. Color defaults to automatic
// TTY detection when unset.
type UIConfig struct {
	Mode  string `yaml:"mode"`
	Color *bool  `yaml:"color"`
}

// LoggingConfig contains diagnostic log settings.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns the configuration of a config-less run.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file propagates
// the os error so callers can fall back to Default.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	cfg.LoadedFrom = filename
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = DefaultBusyTimeoutMS
	}
	if c.Monitor.IntervalSeconds <= 0 {
		c.Monitor.IntervalSeconds = DefaultIntervalSecs
	}
	c.UI.Mode = strutil.NormalizeLower(c.UI.Mode)
	if c.UI.Mode == "" {
		c.UI.Mode = ModePlain
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = DefaultRetentionDays
	}
}

// Validate rejects settings the monitor cannot run with.
func (c *Config) Validate() error {
	switch c.UI.Mode {
	case ModePlain, ModeDashboard:
	default:
		return fmt.Errorf("unknown ui mode %q (want %s or %s)", c.UI.Mode, ModePlain, ModeDashboard)
	}
	if c.Logging.Enabled && c.Logging.Dir == "" {
		return fmt.Errorf("logging enabled but logging.dir is empty")
	}
	return nil
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// Print logs the effective configuration.
func (c *Config) Print() {
	log.Printf("Database: %s (busy_timeout=%dms)", c.Database.Path, c.Database.BusyTimeoutMS)
	log.Printf("Interval: %s | UI mode: %s", c.Interval(), c.UI.Mode)
	if c.Logging.Enabled {
		log.Printf("Logging: dir=%s retention=%dd", c.Logging.Dir, c.Logging.RetentionDays)
	}
}
