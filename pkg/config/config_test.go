package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "costrisk", cfg.ServiceName)
	assert.Equal(t, 10000, cfg.Simulation.DefaultIterations)
	assert.Equal(t, []float64{0.50, 0.80, 0.95}, cfg.Simulation.DefaultConfidenceLevels)
	assert.Equal(t, 1000000, cfg.Simulation.MaxIterations)
	assert.Equal(t, 50, cfg.Simulation.MaxRiskFactors)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
service_name = "costrisk-test"
environment = "staging"

[simulation]
default_iterations = 25000
max_risk_factors = 8

[logger]
level = "debug"
`)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, "costrisk-test", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 25000, cfg.Simulation.DefaultIterations)
	assert.Equal(t, 8, cfg.Simulation.MaxRiskFactors)
	assert.Equal(t, "debug", cfg.Logger.Level)
	// 未覆盖的键保持默认
	assert.Equal(t, 1000000, cfg.Simulation.MaxIterations)
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
service_name = "costrisk-test"

[simulation]
default_iterations = -1
`)
	_, err := LoadWithDefaults(path)
	require.Error(t, err)

	path = writeConfig(t, `
service_name = "costrisk-test"

[simulation]
default_confidence_levels = [0.5, 1.5]
`)
	_, err = LoadWithDefaults(path)
	require.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
