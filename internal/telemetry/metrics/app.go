package metrics

// AppMetrics bundles the instruments the job queue, file processor, and
// HTTP surface record into, so each component takes one struct instead
// of registering its own instruments against the provider.
type AppMetrics struct {
	JobsEnqueued  Counter // labels: preset
	JobsCompleted Counter
	JobsFailed    Counter
	JobDuration   func() Timer

	FilesProcessed      Counter // labels: result (changed|unchanged|error)
	StrokesProcessed    Counter
	StrokesSmoothed     Counter
	StrokesSimplified   Counter
	StrokesStraightened Counter
	StrokesNormalized   Counter
	StrokesSkipped      Counter

	QueueDepth Gauge

	HTTPRequests Counter // labels: route, status
	RateLimited  Counter // labels: route
}

// NewAppMetrics registers every InkSight instrument against p. A nil
// provider yields a fully noop bundle.
func NewAppMetrics(p Provider) *AppMetrics {
	if p == nil {
		p = NewNoopProvider()
	}
	ns := "inksight"
	return &AppMetrics{
		JobsEnqueued: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "jobs", Name: "enqueued_total",
			Help: "Transform jobs accepted onto the queue", Labels: []string{"preset"}}}),
		JobsCompleted: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "jobs", Name: "completed_total",
			Help: "Transform jobs that reached completed"}}),
		JobsFailed: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "jobs", Name: "failed_total",
			Help: "Transform jobs that reached failed"}}),
		JobDuration: p.NewTimer(HistogramOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "jobs", Name: "duration_seconds",
			Help: "Wall time from processing start to terminal status"}}),

		FilesProcessed: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "files_total",
			Help: "Scene files handled by the processor", Labels: []string{"result"}}}),
		StrokesProcessed: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_processed_total",
			Help: "Strokes that ran through the pipeline"}}),
		StrokesSmoothed: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_smoothed_total",
			Help: "Strokes the smoothing stage changed"}}),
		StrokesSimplified: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_simplified_total",
			Help: "Strokes the RDP stage changed"}}),
		StrokesStraightened: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_straightened_total",
			Help: "Strokes the straighten stage snapped"}}),
		StrokesNormalized: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_normalized_total",
			Help: "Strokes the pressure stage changed"}}),
		StrokesSkipped: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "processor", Name: "strokes_skipped_total",
			Help: "Strokes bypassed by tool filter, degeneracy, or no-op result"}}),

		QueueDepth: p.NewGauge(GaugeOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "jobs", Name: "queued",
			Help: "Jobs currently waiting in queued status"}}),

		HTTPRequests: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_total",
			Help: "API requests by route and status code", Labels: []string{"route", "status"}}}),
		RateLimited: p.NewCounter(CounterOpts{CommonOpts: CommonOpts{
			Namespace: ns, Subsystem: "http", Name: "rate_limited_total",
			Help: "Requests rejected by the per-tenant rate limiter", Labels: []string{"route"}}}),
	}
}

// RecordStats folds one file's stroke counters into the bundle.
func (m *AppMetrics) RecordStats(processed, smoothed, simplified, straightened, normalized, skipped int) {
	if m == nil {
		return
	}
	m.StrokesProcessed.Inc(float64(processed))
	m.StrokesSmoothed.Inc(float64(smoothed))
	m.StrokesSimplified.Inc(float64(simplified))
	m.StrokesStraightened.Inc(float64(straightened))
	m.StrokesNormalized.Inc(float64(normalized))
	m.StrokesSkipped.Inc(float64(skipped))
}
