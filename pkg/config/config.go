// Package config loads and validates the daemon configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the corresponding keys are absent.
const (
	DefaultLfsBin       = "/usr/bin/lfs"
	DefaultIntervalSecs = 900
)

// Config is the full daemon configuration.
type Config struct {
	Lustre    LustreConfig    `yaml:"lustre"`
	Migration MigrationConfig `yaml:"migration"`
	Intervals IntervalsConfig `yaml:"intervals"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// LocalMode replaces the Lustre sampler with synthetic fill levels and
	// issues no-op tasks, so the daemon can run without a filesystem.
	LocalMode bool `yaml:"local_mode"`
}

// LustreConfig locates the filesystem under management.
type LustreConfig struct {
	FSPath string `yaml:"fs_path"`
	LfsBin string `yaml:"lfs_bin"`
}

// MigrationConfig controls the pairing algorithm.
type MigrationConfig struct {
	// OSTTargets is the comma-separated list of eligible destination targets.
	OSTTargets string `yaml:"ost_targets"`

	// InputDir is scanned for *.input intake files.
	InputDir string `yaml:"input_dir"`

	// OSTFillThreshold is the percentage above which a target qualifies as a
	// migration source and below which it qualifies as a destination.
	OSTFillThreshold int `yaml:"ost_fill_threshold"`

	// CheckpointPath, when set, persists pending items across restarts.
	CheckpointPath string `yaml:"checkpoint_path"`
}

// IntervalsConfig sets the periodic maintenance cadences in seconds.
type IntervalsConfig struct {
	FillLevelRefreshSecs int `yaml:"fill_level_refresh_secs"`
	InputRescanSecs      int `yaml:"input_rescan_secs"`
	CacheSnapshotSecs    int `yaml:"cache_snapshot_secs"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads, decodes, defaults and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Lustre.LfsBin == "" {
		c.Lustre.LfsBin = DefaultLfsBin
	}
	if c.Intervals.FillLevelRefreshSecs == 0 {
		c.Intervals.FillLevelRefreshSecs = DefaultIntervalSecs
	}
	if c.Intervals.InputRescanSecs == 0 {
		c.Intervals.InputRescanSecs = DefaultIntervalSecs
	}
	if c.Intervals.CacheSnapshotSecs == 0 {
		c.Intervals.CacheSnapshotSecs = DefaultIntervalSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that every required value is present and well formed.
// Validation failures are startup-fatal.
func (c *Config) Validate() error {
	if !c.LocalMode && c.Lustre.FSPath == "" {
		return fmt.Errorf("lustre.fs_path is required")
	}
	if len(c.DestinationTargets()) == 0 {
		return fmt.Errorf("migration.ost_targets is required")
	}
	if c.Migration.InputDir == "" {
		return fmt.Errorf("migration.input_dir is required")
	}
	if c.Migration.OSTFillThreshold < 1 || c.Migration.OSTFillThreshold > 99 {
		return fmt.Errorf("migration.ost_fill_threshold must be between 1 and 99, got %d",
			c.Migration.OSTFillThreshold)
	}
	if c.Intervals.FillLevelRefreshSecs < 1 ||
		c.Intervals.InputRescanSecs < 1 ||
		c.Intervals.CacheSnapshotSecs < 1 {
		return fmt.Errorf("intervals must be positive")
	}
	return nil
}

// DestinationTargets returns the configured destination target names with
// surrounding whitespace trimmed and empty entries dropped.
func (c *Config) DestinationTargets() []string {
	var targets []string
	for _, t := range strings.Split(c.Migration.OSTTargets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

// FillLevelRefreshInterval returns the fill-level refresh cadence.
func (c *Config) FillLevelRefreshInterval() time.Duration {
	return time.Duration(c.Intervals.FillLevelRefreshSecs) * time.Second
}

// InputRescanInterval returns the intake re-scan cadence.
func (c *Config) InputRescanInterval() time.Duration {
	return time.Duration(c.Intervals.InputRescanSecs) * time.Second
}

// CacheSnapshotInterval returns the diagnostic snapshot cadence.
func (c *Config) CacheSnapshotInterval() time.Duration {
	return time.Duration(c.Intervals.CacheSnapshotSecs) * time.Second
}
