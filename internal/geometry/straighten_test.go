package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"inksight/pkg/models"
)

func TestStraightenLineSnapsNearlyStraightStroke(t *testing.T) {
	// y ≈ 100 ± 1, spanning x = 100..180: a wobbly attempt at a
	// horizontal line.
	in := []models.Point{
		{X: 100, Y: 100}, {X: 120, Y: 101}, {X: 140, Y: 99}, {X: 160, Y: 100.5}, {X: 180, Y: 100},
	}
	out := StraightenLine(in, 15.0, 50.0, 30)

	require := assert.New(t)
	require.Equal(in[0], out[0])
	require.Equal(in[len(in)-1], out[len(out)-1])

	first, last := out[0], out[len(out)-1]
	for _, p := range out {
		d := perpendicularDistance(p.X, p.Y, first.X, first.Y, last.X, last.Y)
		require.Less(d, 1e-6)
	}

	length := strokeLength(out)
	require.InDelta(80.0, length, 1e-9)
}

func TestStraightenLineLeavesWavyStrokeAlone(t *testing.T) {
	// The point at x=40 sits 25 units off the endpoint line, well above
	// the 15.0 threshold.
	xs := []float64{10, 20, 30, 40, 50, 60, 70}
	ys := []float64{10, 32, -8, 35, -5, 30, 10}
	in := make([]models.Point, len(xs))
	for i := range xs {
		in[i] = models.Point{X: xs[i], Y: ys[i], Pressure: 128}
	}
	out := StraightenLine(in, 15.0, 50.0, 30)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("wavy stroke has too much deviation to straighten, diff:\n%s", diff)
	}
}

func TestStraightenLineTooFewPointsIsCopy(t *testing.T) {
	in := []models.Point{{X: 0, Y: 0}}
	out := StraightenLine(in, 15.0, 50.0, 30)
	assert.Equal(t, in, out)
}

func TestStraightenLineZeroLengthIsCopy(t *testing.T) {
	in := []models.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}
	out := StraightenLine(in, 15.0, 0.0, 30)
	assert.Equal(t, in, out)
}

func TestStraightenLineTooManyPointsIsCopy(t *testing.T) {
	in := make([]models.Point, 40)
	for i := range in {
		in[i] = models.Point{X: float64(i) * 10, Y: 100}
	}
	out := StraightenLine(in, 15.0, 50.0, 30)
	assert.Equal(t, in, out)
}

func TestPerpendicularDistanceDegenerateSegment(t *testing.T) {
	d := perpendicularDistance(3, 4, 0, 0, 0, 0)
	assert.InDelta(t, math.Hypot(3, 4), d, 1e-9)
}
