package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inksight/pkg/models"
)

func TestNormalizePressureAllEqualMapsToMidpoint(t *testing.T) {
	in := wavyStroke() // every point has Pressure: 128
	out := NormalizePressure(in, 10, 245, 5, 95)

	for _, p := range out {
		assert.EqualValues(t, 127, p.Pressure) // (10+245)/2 = 127 (integer division)
	}
}

func TestNormalizePressureClampsToTargetRange(t *testing.T) {
	in := []models.Point{
		{Pressure: 0}, {Pressure: 50}, {Pressure: 100}, {Pressure: 150}, {Pressure: 255},
	}
	out := NormalizePressure(in, 10, 245, 5, 95)

	min, max := out[0].Pressure, out[0].Pressure
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Pressure, int32(0))
		assert.LessOrEqual(t, p.Pressure, int32(255))
		if p.Pressure < min {
			min = p.Pressure
		}
		if p.Pressure > max {
			max = p.Pressure
		}
	}
	assert.GreaterOrEqual(t, min, int32(10))
	assert.LessOrEqual(t, max, int32(245))
}

func TestNormalizePressureSinglePointIsCopy(t *testing.T) {
	in := []models.Point{{X: 1, Y: 1, Pressure: 77}}
	out := NormalizePressure(in, 10, 245, 5, 95)
	assert.Equal(t, in, out)
}

func TestNormalizePressurePreservesXY(t *testing.T) {
	in := []models.Point{
		{X: 1, Y: 2, Pressure: 10}, {X: 3, Y: 4, Pressure: 200},
	}
	out := NormalizePressure(in, 10, 245, 5, 95)
	assert.Equal(t, in[0].X, out[0].X)
	assert.Equal(t, in[0].Y, out[0].Y)
	assert.Equal(t, in[1].X, out[1].X)
	assert.Equal(t, in[1].Y, out[1].Y)
}
