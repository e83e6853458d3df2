// Package tracing provides a minimal span abstraction for the processing
// pipeline. The built-in tracers generate their own trace/span ids and
// are cheap enough to call once per stroke, with an adaptive sampler for
// high-volume deployments that can't afford to trace every stroke of
// every file. NewOTelTracer bridges the same Tracer interface onto
// OpenTelemetry.
package tracing

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Span is a single traced operation.
type Span interface {
	End()
	SetAttribute(key string, value any)
	Context() SpanContext
	Ended() bool
}

// SpanContext identifies a span and its place in a trace.
type SpanContext struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Start        time.Time
	End          time.Time
}

// Tracer starts spans. A disabled or fully-sampled-out Tracer returns a
// noop span so callers never need to check Noop() before using the
// returned span.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	Noop() bool
}

type noopTracer struct{}
type noopSpan struct{}

func (noopTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noopSpan{}
}
func (noopTracer) Noop() bool                       { return true }
func (noopSpan) End()                               {}
func (noopSpan) SetAttribute(key string, value any) {}
func (noopSpan) Context() SpanContext               { return SpanContext{} }
func (noopSpan) Ended() bool                        { return true }

// NewTracer returns a always-on tracer, or a noop tracer if enabled is
// false.
func NewTracer(enabled bool) Tracer {
	if !enabled {
		return noopTracer{}
	}
	return alwaysOnTracer{}
}

type alwaysOnTracer struct{}

func (alwaysOnTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return startChildSpan(ctx)
}
func (alwaysOnTracer) Noop() bool { return false }

// adaptiveTracer samples a percentage of new traces (traces already in
// flight are always continued). percentFn is re-evaluated on every
// StartSpan call so sampling rate can change at runtime, e.g. backing off
// under load.
type adaptiveTracer struct {
	percentFn func() float64
}

// NewAdaptiveTracer builds a Tracer whose sampling rate for new traces is
// determined by percentFn, called on every root span. A nil percentFn
// disables tracing entirely.
func NewAdaptiveTracer(percentFn func() float64) Tracer {
	if percentFn == nil {
		return noopTracer{}
	}
	return &adaptiveTracer{percentFn: percentFn}
}

func (a *adaptiveTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	parent := SpanFromContext(ctx)
	if parent.ctx.TraceID == "" {
		pct := a.percentFn()
		if pct <= 0 || rand.Float64()*100 > pct {
			return ctx, noopSpan{}
		}
	}
	return startChildSpan(ctx)
}

func (a *adaptiveTracer) Noop() bool { return false }

func startChildSpan(ctx context.Context) (context.Context, Span) {
	parent := SpanFromContext(ctx)
	traceID := parent.ctx.TraceID
	if traceID == "" {
		traceID = randomID(16)
	}
	sp := &span{
		ctx: SpanContext{
			TraceID:      traceID,
			SpanID:       randomID(8),
			ParentSpanID: parent.ctx.SpanID,
			Start:        time.Now(),
		},
		attrs: make(map[string]any),
	}
	return context.WithValue(ctx, spanKey{}, sp), sp
}

type span struct {
	ctx   SpanContext
	mu    sync.Mutex
	ended bool
	attrs map[string]any
}

func (s *span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.ctx.End = time.Now()
		s.ended = true
	}
}

func (s *span) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attrs != nil {
		s.attrs[key] = value
	}
}

func (s *span) Context() SpanContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

type spanKey struct{}

// SpanFromContext returns the active span carried by ctx, or an empty
// span if none is present.
func SpanFromContext(ctx context.Context) *span {
	if ctx == nil {
		return &span{}
	}
	if sp, ok := ctx.Value(spanKey{}).(*span); ok {
		return sp
	}
	return &span{}
}

// ExtractIDs returns the trace and span id carried by ctx, for log
// correlation. Both the internal tracer's spans and OpenTelemetry
// spans are recognized.
func ExtractIDs(ctx context.Context) (traceID, spanID string) {
	sp := SpanFromContext(ctx)
	if sp.ctx.TraceID != "" {
		return sp.ctx.TraceID, sp.ctx.SpanID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String(), sc.SpanID().String()
	}
	return "", ""
}

func randomID(n int) string {
	b := make([]byte, n)
	_, _ = cryptorand.Read(b)
	return hex.EncodeToString(b)
}
