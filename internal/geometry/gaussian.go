// Package geometry holds the pure stroke-shaping kernels: smoothing,
// simplification, straightening, and pressure normalization. Every kernel
// takes a []models.Point and returns a new slice; none mutate their input.
package geometry

import (
	"math"

	"inksight/pkg/models"
)

// gaussianWeights returns a normalized Gaussian kernel of the given odd
// window size.
func gaussianWeights(window int, sigma float64) []float64 {
	half := window / 2
	weights := make([]float64, window)
	total := 0.0
	for i := -half; i <= half; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		weights[i+half] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// SmoothGaussian blends x/y coordinates with a Gaussian-weighted average of
// their neighbors, leaving speed, direction, width, and pressure untouched.
// The first and last `window/2` points on each end are copied verbatim so
// stroke endpoints never move.
func SmoothGaussian(points []models.Point, window int, sigma float64) []models.Point {
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

	weights := gaussianWeights(window, sigma)
	half := window / 2
	result := make([]models.Point, len(points))

	for i, p := range points {
		if i < half || i >= len(points)-half {
			result[i] = p
			continue
		}
		var sx, sy float64
		for j := 0; j < window; j++ {
			sx += weights[j] * points[i-half+j].X
			sy += weights[j] * points[i-half+j].Y
		}
		result[i] = models.Point{
			X: sx, Y: sy,
			Speed: p.Speed, Direction: p.Direction, Width: p.Width, Pressure: p.Pressure,
		}
	}
	return result
}
