package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inksight/internal/telemetry/tracing"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestCorrelatedLoggerInjectsIDs(t *testing.T) {
	var buf bytes.Buffer
	l := New(NewBase("INFO", &buf))

	tracer := tracing.NewTracer(true)
	ctx, span := tracer.StartSpan(context.Background(), "test")
	defer span.End()

	l.InfoCtx(ctx, "processing file", slog.String("path", "a.rm"))

	out := buf.String()
	require.True(t, strings.Contains(out, "processing file"))
	assert.True(t, strings.Contains(out, "trace_id="))
	assert.True(t, strings.Contains(out, "span_id="))
}

func TestCorrelatedLoggerWithoutSpanOmitsIDs(t *testing.T) {
	var buf bytes.Buffer
	l := New(NewBase("INFO", &buf))

	l.WarnCtx(context.Background(), "bare warning")

	out := buf.String()
	assert.True(t, strings.Contains(out, "bare warning"))
	assert.False(t, strings.Contains(out, "trace_id="))
}
