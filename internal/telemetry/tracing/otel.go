package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewOTelTracer bridges the Tracer interface onto an OpenTelemetry
// TracerProvider, for deployments that ship spans to a collector
// instead of keeping them in-process. A nil provider gets a fresh SDK
// provider with no exporter, which still generates valid trace/span ids
// for log correlation.
func NewOTelTracer(tp trace.TracerProvider) Tracer {
	if tp == nil {
		tp = sdktrace.NewTracerProvider()
	}
	return &otelTracer{tracer: tp.Tracer("inksight")}
}

type otelTracer struct{ tracer trace.Tracer }

func (t *otelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	start := time.Now()
	ctx, sp := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{sp: sp, start: start}
}

func (t *otelTracer) Noop() bool { return false }

type otelSpan struct {
	sp    trace.Span
	start time.Time
	ended bool
}

func (s *otelSpan) End() {
	if !s.ended {
		s.sp.End()
		s.ended = true
	}
}

func (s *otelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.sp.SetAttributes(attribute.String(key, v))
	case bool:
		s.sp.SetAttributes(attribute.Bool(key, v))
	case int:
		s.sp.SetAttributes(attribute.Int(key, v))
	case int64:
		s.sp.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.sp.SetAttributes(attribute.Float64(key, v))
	default:
		s.sp.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

func (s *otelSpan) Context() SpanContext {
	sc := s.sp.SpanContext()
	return SpanContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
		Start:   s.start,
	}
}

func (s *otelSpan) Ended() bool { return s.ended }
