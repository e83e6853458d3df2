package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDeviceConfigMatchesPrototypeDefaults(t *testing.T) {
	cfg := DefaultDeviceConfig()
	assert.Equal(t, []uint32{6, 8}, cfg.Processing.SkipTools)
	assert.Equal(t, "gaussian", cfg.Smoothing.Algorithm)
	assert.Equal(t, 5, cfg.Smoothing.MinPoints)
	assert.True(t, cfg.Processing.KeepBackups)
}

func TestLoadDeviceConfigFilePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
xochitl_dir: /custom/xochitl
smoothing:
  algorithm: rdp
  rdp_epsilon: 4.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadDeviceConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/custom/xochitl", cfg.XochitlDir)
	assert.Equal(t, "rdp", cfg.Smoothing.Algorithm)
	assert.Equal(t, 4.5, cfg.Smoothing.RDPEpsilon)
	// fields the override didn't mention keep their defaults.
	assert.Equal(t, 5, cfg.Smoothing.MinPoints)
	assert.Equal(t, 30.0, cfg.IdleThreshold)
	assert.True(t, cfg.Processing.KeepBackups)
}

func TestLoadDeviceConfigFallsBackToDefaultsWhenNoFileFound(t *testing.T) {
	t.Setenv("INKSIGHT_CONFIG", "")
	cfg, err := LoadDeviceConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDeviceConfig(), cfg)
}

func TestDeviceConfigPresetConversion(t *testing.T) {
	cfg := DefaultDeviceConfig()
	cfg.Smoothing.Algorithm = "rdp"
	preset := cfg.Preset()

	assert.EqualValues(t, "rdp", preset.Smoothing.Algorithm)
	assert.Equal(t, cfg.LineStraightening.StraightnessThreshold, preset.Straighten.Threshold)
	assert.EqualValues(t, cfg.PressureNormalization.TargetMin, preset.Pressure.TargetMin)
}
