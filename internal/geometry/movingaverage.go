package geometry

import "inksight/pkg/models"

// SmoothMovingAverage blends x/y coordinates with an unweighted average of
// their neighbors. Endpoints and the other point fields are preserved the
// same way SmoothGaussian preserves them.
func SmoothMovingAverage(points []models.Point, window int) []models.Point {
	if len(points) < 3 {
		return append([]models.Point(nil), points...)
	}

	if window > len(points) {
		window = len(points)
	}
	if window%2 == 0 {
		window--
	}
	if window < 3 {
		return append([]models.Point(nil), points...)
	}

	half := window / 2
	result := make([]models.Point, len(points))

	for i, p := range points {
		if i < half || i >= len(points)-half {
			result[i] = p
			continue
		}
		var sx, sy float64
		for j := 0; j < window; j++ {
			sx += points[i-half+j].X
			sy += points[i-half+j].Y
		}
		result[i] = models.Point{
			X: sx / float64(window), Y: sy / float64(window),
			Speed: p.Speed, Direction: p.Direction, Width: p.Width, Pressure: p.Pressure,
		}
	}
	return result
}
