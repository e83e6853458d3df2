package geometry

import (
	"sort"

	"inksight/pkg/models"
)

// NormalizePressure rescales a stroke's pressure values so the
// [lowPct, highPct] percentile band maps onto [targetMin, targetMax].
// Pressures outside the band map linearly beyond those targets; results
// are only clamped to [0, 255]. When that band collapses to a single
// value (a stroke drawn at near-constant pressure), every point is set to
// the midpoint of the target range instead of dividing by zero.
func NormalizePressure(points []models.Point, targetMin, targetMax int32, lowPct, highPct int) []models.Point {
	if len(points) < 2 {
		return append([]models.Point(nil), points...)
	}

	pressures := make([]int32, len(points))
	for i, p := range points {
		pressures[i] = p.Pressure
	}
	sort.Slice(pressures, func(i, j int) bool { return pressures[i] < pressures[j] })

	n := len(pressures)
	loIdx := n * lowPct / 100
	if loIdx < 0 {
		loIdx = 0
	}
	hiIdx := n * highPct / 100
	if hiIdx > n-1 {
		hiIdx = n - 1
	}
	pLo := pressures[loIdx]
	pHi := pressures[hiIdx]

	result := make([]models.Point, len(points))
	if pHi <= pLo {
		mid := (targetMin + targetMax) / 2
		for i, p := range points {
			result[i] = models.Point{
				X: p.X, Y: p.Y, Speed: p.Speed, Direction: p.Direction, Width: p.Width,
				Pressure: mid,
			}
		}
		return result
	}

	for i, p := range points {
		normalized := float64(p.Pressure-pLo) / float64(pHi-pLo)
		newPressure := targetMin + int32(normalized*float64(targetMax-targetMin))
		if newPressure < 0 {
			newPressure = 0
		} else if newPressure > 255 {
			newPressure = 255
		}
		result[i] = models.Point{
			X: p.X, Y: p.Y, Speed: p.Speed, Direction: p.Direction, Width: p.Width,
			Pressure: newPressure,
		}
	}
	return result
}
