package geometry

import "inksight/pkg/models"

// SimplifyRDP applies Ramer-Douglas-Peucker simplification: points whose
// perpendicular deviation from the straight line between the stroke's
// endpoints is under epsilon are dropped. Good at cleaning up noisy
// strokes while keeping the overall shape.
//
// Unlike the other kernels, RDP changes the number of points and does not
// preserve anything but the first and last point exactly.
func SimplifyRDP(points []models.Point, epsilon float64) []models.Point {
	if len(points) < 3 {
		return append([]models.Point(nil), points...)
	}

	maxDist := 0.0
	maxIdx := 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i].X, points[i].Y, first.X, first.Y, last.X, last.Y)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > epsilon {
		left := SimplifyRDP(points[:maxIdx+1], epsilon)
		right := SimplifyRDP(points[maxIdx:], epsilon)
		out := make([]models.Point, 0, len(left)-1+len(right))
		out = append(out, left[:len(left)-1]...)
		out = append(out, right...)
		return out
	}

	return []models.Point{first, last}
}
