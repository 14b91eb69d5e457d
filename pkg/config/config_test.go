package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ostbalance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
lustre:
  fs_path: /lustre
migration:
  ost_targets: "4,5,6"
  input_dir: /var/lib/ostbalance/input
  ost_fill_threshold: 85
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultLfsBin, cfg.Lustre.LfsBin)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Minute, cfg.FillLevelRefreshInterval())
	assert.Equal(t, 15*time.Minute, cfg.InputRescanInterval())
	assert.Equal(t, 15*time.Minute, cfg.CacheSnapshotInterval())
	assert.Equal(t, []string{"4", "5", "6"}, cfg.DestinationTargets())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "lustre: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRequiredValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"missing fs_path",
			func(c *Config) { c.Lustre.FSPath = "" },
			"fs_path",
		},
		{
			"missing targets",
			func(c *Config) { c.Migration.OSTTargets = " , " },
			"ost_targets",
		},
		{
			"missing input dir",
			func(c *Config) { c.Migration.InputDir = "" },
			"input_dir",
		},
		{
			"threshold too low",
			func(c *Config) { c.Migration.OSTFillThreshold = 0 },
			"ost_fill_threshold",
		},
		{
			"threshold too high",
			func(c *Config) { c.Migration.OSTFillThreshold = 100 },
			"ost_fill_threshold",
		},
		{
			"negative interval",
			func(c *Config) { c.Intervals.InputRescanSecs = -1 },
			"intervals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Lustre:    LustreConfig{FSPath: "/lustre", LfsBin: DefaultLfsBin},
				Migration: MigrationConfig{OSTTargets: "1,2", InputDir: "/in", OSTFillThreshold: 85},
				Intervals: IntervalsConfig{
					FillLevelRefreshSecs: DefaultIntervalSecs,
					InputRescanSecs:      DefaultIntervalSecs,
					CacheSnapshotSecs:    DefaultIntervalSecs,
				},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocalModeDoesNotRequireFSPath(t *testing.T) {
	path := writeConfig(t, `
local_mode: true
migration:
  ost_targets: "0,1"
  input_dir: /tmp/input
  ost_fill_threshold: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.LocalMode)
}
