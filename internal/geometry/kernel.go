package geometry

import "inksight/pkg/models"

// ApplySmoothing dispatches to the smoothing kernel named by cfg.Algorithm.
// An unrecognized algorithm name is a no-op: the points pass through
// unchanged rather than panicking.
func ApplySmoothing(points []models.Point, cfg models.SmoothingConfig) []models.Point {
	switch cfg.Algorithm {
	case models.SmoothingGaussian:
		return SmoothGaussian(points, cfg.Window, cfg.Sigma)
	case models.SmoothingMovingAverage:
		return SmoothMovingAverage(points, cfg.Window)
	case models.SmoothingRDP:
		return SimplifyRDP(points, cfg.RDPEpsilon)
	default:
		return append([]models.Point(nil), points...)
	}
}
