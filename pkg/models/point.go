// Package models defines the value types shared across InkSight's
// geometry kernels, pipeline composer, scene codec, and job tracking.
package models

// Point is one pen sample within a stroke. Kernels treat Point as an
// immutable value: they produce new slices of Points, never mutate one
// in place.
type Point struct {
	X         float64
	Y         float64
	Speed     int32
	Direction int32
	Width     int32
	Pressure  int32 // clamped to [0,255]
}

// Stroke is an ordered sequence of pen samples produced by a single
// contact-to-lift motion, tagged with the tool and color it was drawn
// with.
type Stroke struct {
	ToolID uint32
	Color  uint32
	Points []Point
}

// Degenerate reports whether the stroke has too few points for any
// kernel to meaningfully operate on. Degenerate strokes bypass the
// pipeline entirely.
func (s Stroke) Degenerate() bool {
	return len(s.Points) < 2
}

// Clone returns a deep copy of the stroke's point slice so callers can
// compare before/after without aliasing.
func (s Stroke) Clone() Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return Stroke{ToolID: s.ToolID, Color: s.Color, Points: pts}
}
