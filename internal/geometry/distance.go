package geometry

import (
	"math"

	"inksight/pkg/models"
)

// perpendicularDistance returns the distance from point to the segment
// lineStart-lineEnd, projecting onto the segment (clamped to its ends)
// rather than the infinite line through it.
func perpendicularDistance(px, py, sx, sy, ex, ey float64) float64 {
	dx := ex - sx
	dy := ey - sy
	lengthSq := dx*dx + dy*dy

	if lengthSq == 0 {
		return math.Hypot(px-sx, py-sy)
	}

	t := ((px-sx)*dx + (py-sy)*dy) / lengthSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	projX := sx + t*dx
	projY := sy + t*dy
	return math.Hypot(px-projX, py-projY)
}

// strokeLength sums the Euclidean length of each segment in points.
func strokeLength(points []models.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}
