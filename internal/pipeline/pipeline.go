// Package pipeline composes the geometry kernels into the fixed
// per-stroke processing order: smoothing, then RDP simplification, then
// straightening, then pressure normalization. Stage order is not
// configurable; only each stage's enable flag and parameters are, via a
// models.Preset.
package pipeline

import (
	"context"

	"inksight/internal/geometry"
	"inksight/internal/telemetry/tracing"
	"inksight/pkg/models"
)

// ToolFilter decides whether a stroke drawn with a given tool id is
// eligible for processing at all, independent of the preset's stage
// configuration.
type ToolFilter struct {
	Skip []uint32 // tool ids that always bypass the pipeline
	Only []uint32 // when non-empty, only these tool ids are eligible
}

// Eligible reports whether toolID passes the skip/only gates.
func (f ToolFilter) Eligible(toolID uint32) bool {
	for _, id := range f.Skip {
		if id == toolID {
			return false
		}
	}
	if len(f.Only) == 0 {
		return true
	}
	for _, id := range f.Only {
		if id == toolID {
			return true
		}
	}
	return false
}

// Composer runs the fixed stage order against a models.Preset.
type Composer struct {
	Preset models.Preset
	Filter ToolFilter
	Tracer tracing.Tracer
}

// NewComposer builds a Composer for the given preset and tool filter. A
// nil tracer falls back to a noop tracer so callers never need a nil
// check.
func NewComposer(preset models.Preset, filter ToolFilter, tracer tracing.Tracer) *Composer {
	if tracer == nil {
		tracer = tracing.NewTracer(false)
	}
	return &Composer{Preset: preset, Filter: filter, Tracer: tracer}
}

// StrokeResult reports what happened to one stroke.
type StrokeResult struct {
	Skipped      bool // bypassed by the tool filter or too few points
	Smoothed     bool
	Simplified   bool
	Straightened bool
	Normalized   bool
	Points       []models.Point
}

// RunStroke applies the composer's stages to a single stroke's points and
// reports, per stage, whether that stage actually changed anything — the
// per-kernel delta counters needed for ProcessingStats.
func (c *Composer) RunStroke(ctx context.Context, toolID uint32, points []models.Point) StrokeResult {
	ctx, span := c.Tracer.StartSpan(ctx, "pipeline.stroke")
	defer span.End()
	span.SetAttribute("tool_id", toolID)
	span.SetAttribute("input_points", len(points))

	if !c.Filter.Eligible(toolID) || len(points) < 2 {
		return StrokeResult{Skipped: true, Points: points}
	}

	result := points
	var smoothed, simplified, straightened, normalized bool

	smoothCfg := c.Preset.Smoothing
	if smoothCfg.Enabled && len(result) >= smoothCfg.MinPoints {
		next := geometry.ApplySmoothing(result, smoothCfg)
		smoothed = !pointsEqual(result, next)
		result = next
	}

	rdpCfg := c.Preset.RDP
	if rdpCfg.Enabled {
		next := geometry.SimplifyRDP(result, rdpCfg.Epsilon)
		simplified = !pointsEqual(result, next)
		result = next
	}

	straightenCfg := c.Preset.Straighten
	if straightenCfg.Enabled {
		next := geometry.StraightenLine(result, straightenCfg.Threshold, straightenCfg.MinLength, straightenCfg.MaxPoints)
		straightened = !pointsEqual(result, next)
		result = next
	}

	pressureCfg := c.Preset.Pressure
	if pressureCfg.Enabled {
		next := geometry.NormalizePressure(result, pressureCfg.TargetMin, pressureCfg.TargetMax, pressureCfg.LowPercent, pressureCfg.HighPercent)
		normalized = !pointsEqual(result, next)
		result = next
	}

	span.SetAttribute("smoothed", smoothed)
	span.SetAttribute("simplified", simplified)
	span.SetAttribute("straightened", straightened)
	span.SetAttribute("normalized", normalized)

	return StrokeResult{
		Smoothed:     smoothed,
		Simplified:   simplified,
		Straightened: straightened,
		Normalized:   normalized,
		Points:       result,
	}
}

func pointsEqual(a, b []models.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
