package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Equal(t, 100, cfg.ML.Trees)
	require.Equal(t, int64(42), cfg.ML.Seed)
	require.Equal(t, []int{5, 10, 20, 50}, cfg.Indicators.SMAPeriods)
	require.Equal(t, []int{100, 50, 25}, cfg.Neural.HiddenLayers)
	require.Equal(t, 0.02, cfg.Neural.ClassThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero trees", func(c *Config) { c.ML.Trees = 0 }},
		{"test size one", func(c *Config) { c.ML.TestSize = 1 }},
		{"no hidden layers", func(c *Config) { c.Neural.HiddenLayers = nil }},
		{"negative hidden layer", func(c *Config) { c.Neural.HiddenLayers = []int{100, -5} }},
		{"zero learning rate", func(c *Config) { c.Neural.LearningRate = 0 }},
		{"zero class threshold", func(c *Config) { c.Neural.ClassThreshold = 0 }},
		{"macd fast above slow", func(c *Config) { c.Indicators.MACDFast = 30 }},
		{"zero sma period", func(c *Config) { c.Indicators.SMAPeriods = []int{5, 0} }},
		{"zero recent bars", func(c *Config) { c.Patterns.RecentBars = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadCreatesTemplateAndKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default().ML, cfg.ML)

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err, "a template config should be written on first load")
}

func TestLoadReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[ml]
trees = 7
max_depth = 4

[neural]
learning_rate = 0.005
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.ML.Trees)
	require.Equal(t, 4, cfg.ML.MaxDepth)
	require.Equal(t, 0.005, cfg.Neural.LearningRate)

	// Untouched sections keep their defaults
	require.Equal(t, 0.2, cfg.ML.TestSize)
	require.Equal(t, 14, cfg.Indicators.RSIPeriod)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[ml]
trees = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INSIGHT_DB_PATH", "/tmp/custom.db")
	t.Setenv("INSIGHT_SEED", "99")
	t.Setenv("INSIGHT_TREES", "33")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", cfg.Storage.DatabasePath)
	require.Equal(t, int64(99), cfg.ML.Seed)
	require.Equal(t, 33, cfg.ML.Trees)
}
