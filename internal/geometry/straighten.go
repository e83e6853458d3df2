package geometry

import (
	"math"

	"inksight/pkg/models"
)

// maxDeviation returns the largest perpendicular distance any interior
// point has from the line between the stroke's first and last point.
func maxDeviation(points []models.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	first, last := points[0], points[len(points)-1]
	max := 0.0
	for _, p := range points[1 : len(points)-1] {
		if d := perpendicularDistance(p.X, p.Y, first.X, first.Y, last.X, last.Y); d > max {
			max = d
		}
	}
	return max
}

// StraightenLine snaps a stroke to a perfectly straight segment when it
// already looks like an attempt at one: long enough (>= minLength), short
// enough (<= maxPoints), and with no interior point deviating from the
// endpoint line by more than threshold. Points too far from that shape are
// returned unchanged.
//
// When a stroke qualifies, every point is re-projected onto the straight
// line at its original cumulative-length fraction, so relative point
// spacing along the stroke is preserved.
func StraightenLine(points []models.Point, threshold, minLength float64, maxPoints int) []models.Point {
	if len(points) < 2 || len(points) > maxPoints {
		return append([]models.Point(nil), points...)
	}

	totalLen := strokeLength(points)
	if totalLen < minLength {
		return append([]models.Point(nil), points...)
	}
	if maxDeviation(points) > threshold {
		return append([]models.Point(nil), points...)
	}
	if totalLen == 0 {
		return append([]models.Point(nil), points...)
	}

	start, end := points[0], points[len(points)-1]
	result := make([]models.Point, len(points))
	result[0] = start

	cumulative := 0.0
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		cumulative += math.Hypot(dx, dy)
		t := cumulative / totalLen
		result[i] = models.Point{
			X: start.X + t*(end.X-start.X),
			Y: start.Y + t*(end.Y-start.Y),
			Speed: points[i].Speed, Direction: points[i].Direction,
			Width: points[i].Width, Pressure: points[i].Pressure,
		}
	}
	return result
}
