package models

// SmoothingAlgorithm names the interior-point smoothing kernel a
// smoothing config selects. The device tier picks exactly one; the cloud
// presets always smooth with Gaussian and drive RDP through its own
// stage toggle instead.
type SmoothingAlgorithm string

const (
	SmoothingGaussian      SmoothingAlgorithm = "gaussian"
	SmoothingMovingAverage SmoothingAlgorithm = "moving_average"
	SmoothingRDP           SmoothingAlgorithm = "rdp"
)

// SmoothingConfig controls the first pipeline stage.
type SmoothingConfig struct {
	Enabled    bool
	Algorithm  SmoothingAlgorithm
	Window     int
	Sigma      float64
	RDPEpsilon float64 // used only when Algorithm == SmoothingRDP
	MinPoints  int
}

// RDPConfig controls the standalone simplification stage that runs after
// smoothing. Apart from smoothing with the rdp algorithm, this is the
// only stage that changes a stroke's point count.
type RDPConfig struct {
	Enabled bool
	Epsilon float64
}

// StraightenConfig controls the straight-line snap stage.
type StraightenConfig struct {
	Enabled   bool
	Threshold float64 // tau
	MinLength float64
	MaxPoints int
}

// PressureConfig controls the percentile-based pressure normalization
// stage.
type PressureConfig struct {
	Enabled     bool
	TargetMin   int32
	TargetMax   int32
	LowPercent  int
	HighPercent int
}

// Preset bundles the stage configs plus a name used for unknown-preset
// fallback and reporting.
type Preset struct {
	Name       string
	Smoothing  SmoothingConfig
	RDP        RDPConfig
	Straighten StraightenConfig
	Pressure   PressureConfig
}

// DefaultPressure returns the default pressure-normalization
// parameters shared by every preset.
func DefaultPressure() PressureConfig {
	return PressureConfig{
		Enabled:     true,
		TargetMin:   10,
		TargetMax:   245,
		LowPercent:  5,
		HighPercent: 95,
	}
}

// Minimal, Medium, and Aggressive are the three named presets. Unknown
// preset names resolve to Medium.
func Minimal() Preset {
	return Preset{
		Name: "minimal",
		Smoothing: SmoothingConfig{
			Enabled: true, Algorithm: SmoothingGaussian, Window: 5, Sigma: 0.8, MinPoints: 5,
		},
		RDP:        RDPConfig{Enabled: false},
		Straighten: StraightenConfig{Enabled: false},
		Pressure:   DefaultPressure(),
	}
}

func Medium() Preset {
	return Preset{
		Name: "medium",
		Smoothing: SmoothingConfig{
			Enabled: true, Algorithm: SmoothingGaussian, Window: 5, Sigma: 1.0, MinPoints: 5,
		},
		RDP:        RDPConfig{Enabled: true, Epsilon: 2.0},
		Straighten: StraightenConfig{Enabled: true, Threshold: 15.0, MinLength: 50.0, MaxPoints: 30},
		Pressure:   DefaultPressure(),
	}
}

func Aggressive() Preset {
	return Preset{
		Name: "aggressive",
		Smoothing: SmoothingConfig{
			Enabled: true, Algorithm: SmoothingGaussian, Window: 5, Sigma: 1.5, MinPoints: 5,
		},
		RDP:        RDPConfig{Enabled: true, Epsilon: 3.0},
		Straighten: StraightenConfig{Enabled: true, Threshold: 20.0, MinLength: 50.0, MaxPoints: 30},
		Pressure:   DefaultPressure(),
	}
}

// PresetByName resolves a preset name to its configuration. Unknown
// names resolve to Medium.
func PresetByName(name string) Preset {
	switch name {
	case "minimal":
		return Minimal()
	case "aggressive":
		return Aggressive()
	default:
		return Medium()
	}
}

// KnownPreset reports whether name is one of the named presets, for
// upload validation where an unknown name is a client error rather than
// a silent fallback.
func KnownPreset(name string) bool {
	switch name {
	case "minimal", "medium", "aggressive":
		return true
	}
	return false
}
