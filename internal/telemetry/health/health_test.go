package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProbe(name string, status Status) Probe {
	return ProbeFunc(func(ctx context.Context) ProbeResult {
		return ProbeResult{Name: name, Status: status}
	})
}

func TestEvaluatorAllHealthy(t *testing.T) {
	e := NewEvaluator(time.Second, staticProbe("storage", StatusHealthy), staticProbe("queue", StatusHealthy))
	snap := e.Evaluate(context.Background())

	assert.Equal(t, StatusHealthy, snap.Overall)
	require.Len(t, snap.Probes, 2)
	assert.False(t, snap.Probes[0].CheckedAt.IsZero())
}

func TestEvaluatorUnhealthyDominates(t *testing.T) {
	e := NewEvaluator(time.Second,
		staticProbe("storage", StatusHealthy),
		staticProbe("queue", StatusDegraded),
		staticProbe("disk", StatusUnhealthy),
	)
	snap := e.Evaluate(context.Background())
	assert.Equal(t, StatusUnhealthy, snap.Overall)
}

func TestEvaluatorDegradedBeatsHealthy(t *testing.T) {
	e := NewEvaluator(time.Second, staticProbe("a", StatusHealthy), staticProbe("b", StatusDegraded))
	assert.Equal(t, StatusDegraded, e.Evaluate(context.Background()).Overall)
}

func TestEvaluatorNoProbesIsUnknown(t *testing.T) {
	e := NewEvaluator(time.Second)
	assert.Equal(t, StatusUnknown, e.Evaluate(context.Background()).Overall)
}

func TestEvaluatorCachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	e := NewEvaluator(time.Minute, ProbeFunc(func(ctx context.Context) ProbeResult {
		calls.Add(1)
		return ProbeResult{Name: "counted", Status: StatusHealthy}
	}))

	e.Evaluate(context.Background())
	e.Evaluate(context.Background())
	assert.EqualValues(t, 1, calls.Load())

	e.Invalidate()
	e.Evaluate(context.Background())
	assert.EqualValues(t, 2, calls.Load())
}

func TestEvaluatorRegisterAddsProbe(t *testing.T) {
	e := NewEvaluator(time.Minute)
	e.Register(staticProbe("late", StatusHealthy))
	e.Invalidate()
	snap := e.Evaluate(context.Background())
	require.Len(t, snap.Probes, 1)
	assert.Equal(t, StatusHealthy, snap.Overall)
}
