// Package config loads the on-device and cloud-service configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"inksight/pkg/models"
)

// SmoothingConfig mirrors models.SmoothingConfig with YAML tags and the
// field names InkSight's config.yaml has always used.
type SmoothingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Algorithm  string  `yaml:"algorithm"`
	WindowSize int     `yaml:"window_size"`
	Sigma      float64 `yaml:"sigma"`
	RDPEpsilon float64 `yaml:"rdp_epsilon"`
	MinPoints  int     `yaml:"min_points"`
}

type PressureConfig struct {
	Enabled        bool `yaml:"enabled"`
	TargetMin      int  `yaml:"target_min"`
	TargetMax      int  `yaml:"target_max"`
	LowPercentile  int  `yaml:"low_percentile"`
	HighPercentile int  `yaml:"high_percentile"`
}

type StraighteningConfig struct {
	Enabled               bool    `yaml:"enabled"`
	StraightnessThreshold float64 `yaml:"straightness_threshold"`
	MinLength             float64 `yaml:"min_length"`
	MaxPoints             int     `yaml:"max_points"`
}

type ProcessingConfig struct {
	UseEnhancedLayer  bool     `yaml:"use_enhanced_layer"`
	EnhancedLayerName string   `yaml:"enhanced_layer_name"`
	SkipTools         []uint32 `yaml:"skip_tools"`
	OnlyTools         []uint32 `yaml:"only_tools"`
	KeepBackups       bool     `yaml:"keep_backups"`
}

type CloudHandoffConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	QueueFile string `yaml:"queue_file"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	BackupCount int    `yaml:"backup_count"`
}

type DaemonConfig struct {
	PIDFile    string `yaml:"pid_file"`
	Foreground bool   `yaml:"foreground"`
}

// DeviceConfig is the on-device daemon's full configuration, loaded from
// config.yaml with every field defaulted so a missing or partial file is
// never a hard failure.
type DeviceConfig struct {
	XochitlDir            string              `yaml:"xochitl_dir"`
	PollInterval          float64             `yaml:"poll_interval"`
	IdleThreshold         float64             `yaml:"idle_threshold"`
	Smoothing             SmoothingConfig     `yaml:"smoothing"`
	PressureNormalization PressureConfig      `yaml:"pressure_normalization"`
	LineStraightening     StraighteningConfig `yaml:"line_straightening"`
	Processing            ProcessingConfig    `yaml:"processing"`
	Cloud                 CloudHandoffConfig  `yaml:"cloud"`
	Logging               LoggingConfig       `yaml:"logging"`
	Daemon                DaemonConfig        `yaml:"daemon"`
}

// DefaultDeviceConfig returns the hardcoded defaults every InkSight
// daemon falls back to when no config file is present.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		XochitlDir:    "/home/root/.local/share/remarkable/xochitl",
		PollInterval:  2.0,
		IdleThreshold: 30.0,
		Smoothing: SmoothingConfig{
			Enabled: true, Algorithm: "gaussian", WindowSize: 5, Sigma: 1.0, RDPEpsilon: 2.0, MinPoints: 5,
		},
		PressureNormalization: PressureConfig{
			Enabled: true, TargetMin: 10, TargetMax: 245, LowPercentile: 5, HighPercentile: 95,
		},
		LineStraightening: StraighteningConfig{
			Enabled: true, StraightnessThreshold: 15.0, MinLength: 50.0, MaxPoints: 30,
		},
		Processing: ProcessingConfig{
			UseEnhancedLayer: true, EnhancedLayerName: "InkSight Enhanced",
			SkipTools: []uint32{6, 8}, OnlyTools: nil, KeepBackups: true,
		},
		Cloud: CloudHandoffConfig{
			Enabled: false, QueueFile: "/home/root/.inksight/cloud_queue.json",
		},
		Logging: LoggingConfig{
			Level: "INFO", File: "/home/root/.inksight/inksight.log", MaxSizeMB: 10, BackupCount: 3,
		},
		Daemon: DaemonConfig{
			PIDFile: "/home/root/.inksight/inksight.pid", Foreground: false,
		},
	}
}

// LoadDeviceConfigFile parses a YAML file over a copy of the defaults, so
// any field the file omits keeps its default value.
func LoadDeviceConfigFile(path string) (DeviceConfig, error) {
	cfg := DefaultDeviceConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDeviceConfig resolves a config file: an explicit path argument
// first, then INKSIGHT_CONFIG, then two well-known system locations,
// falling back to defaults if none exist.
func LoadDeviceConfig(explicitPath string) (DeviceConfig, error) {
	candidates := []string{
		explicitPath,
		os.Getenv("INKSIGHT_CONFIG"),
		"/home/root/.inksight/config.yaml",
		"/etc/inksight/config.yaml",
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return LoadDeviceConfigFile(p)
		}
	}
	return DefaultDeviceConfig(), nil
}

// Preset converts the YAML smoothing/pressure/straightening blocks into
// the models.Preset the pipeline composer consumes.
func (c DeviceConfig) Preset() models.Preset {
	return models.Preset{
		Name: "device",
		Smoothing: models.SmoothingConfig{
			Enabled:    c.Smoothing.Enabled,
			Algorithm:  models.SmoothingAlgorithm(c.Smoothing.Algorithm),
			Window:     c.Smoothing.WindowSize,
			Sigma:      c.Smoothing.Sigma,
			RDPEpsilon: c.Smoothing.RDPEpsilon,
			MinPoints:  c.Smoothing.MinPoints,
		},
		// The device tier selects one smoothing algorithm (which may be
		// rdp); the standalone simplification stage is a cloud-preset
		// concept and stays off here.
		RDP: models.RDPConfig{Enabled: false},
		Straighten: models.StraightenConfig{
			Enabled:   c.LineStraightening.Enabled,
			Threshold: c.LineStraightening.StraightnessThreshold,
			MinLength: c.LineStraightening.MinLength,
			MaxPoints: c.LineStraightening.MaxPoints,
		},
		Pressure: models.PressureConfig{
			Enabled:     c.PressureNormalization.Enabled,
			TargetMin:   int32(c.PressureNormalization.TargetMin),
			TargetMax:   int32(c.PressureNormalization.TargetMax),
			LowPercent:  c.PressureNormalization.LowPercentile,
			HighPercent: c.PressureNormalization.HighPercentile,
		},
	}
}
