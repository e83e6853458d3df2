// Package metrics defines the provider abstraction the rest of InkSight
// records telemetry through. Backends: Prometheus, OpenTelemetry, or
// noop; callers never know which is active.
package metrics

import "context"

// Counter represents a monotonically increasing value.
type Counter interface {
	Inc(delta float64, labels ...string)
}

// Gauge represents a value that can go up or down.
type Gauge interface {
	Set(value float64, labels ...string)
	Add(delta float64, labels ...string)
}

// Histogram records observations into buckets and tracks count + sum.
type Histogram interface {
	Observe(value float64, labels ...string)
}

// Timer is a helper handle for measuring latency.
type Timer interface {
	// ObserveDuration records the time elapsed since the timer was
	// created, in seconds.
	ObserveDuration(labels ...string)
}

// Provider is the top-level metrics provider abstraction.
type Provider interface {
	NewCounter(opts CounterOpts) Counter
	NewGauge(opts GaugeOpts) Gauge
	NewHistogram(opts HistogramOpts) Histogram
	NewTimer(h HistogramOpts) func() Timer
	// Health returns an error if the provider is degraded (e.g.
	// registration failures).
	Health(ctx context.Context) error
}

// CommonOpts are the option fields shared by every metric kind.
type CommonOpts struct {
	Namespace string   // logical prefix, usually "inksight"
	Subsystem string   // secondary prefix, optional
	Name      string   // required base metric name (snake_case)
	Help      string   // human readable help text
	Labels    []string // label key list; ordering defines the variadic value ordering
}

type CounterOpts struct{ CommonOpts }

type GaugeOpts struct{ CommonOpts }

type HistogramOpts struct {
	CommonOpts
	Buckets []float64 // optional custom bucket boundaries
}

type noopProvider struct{}
type noopCounter struct{}
type noopGauge struct{}
type noopHistogram struct{}
type noopTimer struct{}

// NewNoopProvider returns a provider that does nothing.
func NewNoopProvider() Provider { return &noopProvider{} }

func (p *noopProvider) NewCounter(opts CounterOpts) Counter       { return noopCounter{} }
func (p *noopProvider) NewGauge(opts GaugeOpts) Gauge             { return noopGauge{} }
func (p *noopProvider) NewHistogram(opts HistogramOpts) Histogram { return noopHistogram{} }
func (p *noopProvider) NewTimer(h HistogramOpts) func() Timer {
	return func() Timer { return noopTimer{} }
}
func (p *noopProvider) Health(ctx context.Context) error { return nil }

func (noopCounter) Inc(delta float64, labels ...string)       {}
func (noopGauge) Set(value float64, labels ...string)         {}
func (noopGauge) Add(delta float64, labels ...string)         {}
func (noopHistogram) Observe(value float64, labels ...string) {}
func (noopTimer) ObserveDuration(labels ...string)            {}

// NewProvider resolves a backend name from configuration: "prom",
// "otel", or anything else for noop.
func NewProvider(backend string) Provider {
	switch backend {
	case "prom", "prometheus":
		return NewPrometheusProvider(PrometheusProviderOptions{})
	case "otel":
		return NewOTelProvider(OTelProviderOptions{ServiceName: "inksight"})
	default:
		return NewNoopProvider()
	}
}
