// Package jobqueue runs cloud transform jobs on a single background
// worker, processing the oldest queued job first.
package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"inksight/internal/telemetry/metrics"
	"inksight/pkg/models"
)

// Worker does the actual CPU-bound transform work for one job. It
// returns the job's terminal state: the queue never inspects the job
// beyond what Worker reports back.
type Worker func(ctx context.Context, job *models.JobRecord) error

// Queue is an in-memory FIFO-by-created_at job queue with a single
// background processing goroutine, so at most one job is ever in
// Processing.
type Queue struct {
	worker  Worker
	metrics *metrics.AppMetrics

	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.JobRecord

	wake chan struct{}
}

// Option customizes a Queue at construction time.
type Option func(*Queue)

// WithMetrics records queue activity into m.
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// New builds a Queue and starts its background worker goroutine. The
// worker goroutine runs until ctx is canceled.
func New(ctx context.Context, worker Worker, opts ...Option) *Queue {
	q := &Queue{
		worker: worker,
		jobs:   make(map[uuid.UUID]*models.JobRecord),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run(ctx)
	return q
}

// Enqueue adds a job and wakes the worker if it's idle.
func (q *Queue) Enqueue(job *models.JobRecord) {
	q.mu.Lock()
	q.jobs[job.JobID] = job
	depth := q.queuedCountLocked()
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.JobsEnqueued.Inc(1, job.Preset)
		q.metrics.QueueDepth.Set(float64(depth))
	}

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) queuedCountLocked() int {
	n := 0
	for _, j := range q.jobs {
		if j.Status == models.JobQueued {
			n++
		}
	}
	return n
}

// Get returns a snapshot of a job, or nil if it doesn't exist.
func (q *Queue) Get(id uuid.UUID) *models.JobRecord {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.jobs[id].Clone()
}

// ListTenant returns tenantID's jobs, newest first, capped at limit (0
// means unbounded).
func (q *Queue) ListTenant(tenantID string, limit int) []*models.JobRecord {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var out []*models.JobRecord
	for _, j := range q.jobs {
		if j.TenantID == tenantID {
			out = append(out, j.Clone())
		}
	}
	sortByCreatedAtDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByCreatedAtDesc(jobs []*models.JobRecord) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].CreatedAt.After(jobs[j-1].CreatedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}

func (q *Queue) run(ctx context.Context) {
	for {
		job := q.nextQueued()
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			case <-time.After(time.Second):
				continue
			}
		}

		q.processOne(ctx, job)

		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// nextQueued returns the oldest job still in JobQueued, or nil if none
// are waiting.
func (q *Queue) nextQueued() *models.JobRecord {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var oldest *models.JobRecord
	for _, j := range q.jobs {
		if j.Status != models.JobQueued {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	return oldest
}

// processOne runs the worker against a private clone of the job so
// readers calling Get concurrently never observe a partially-written
// record; the clone's results are copied back under lock once the
// worker returns.
func (q *Queue) processOne(ctx context.Context, job *models.JobRecord) {
	started := time.Now()
	q.mu.Lock()
	job.Status = models.JobProcessing
	job.StartedAt = &started
	job.Progress = 10
	work := job.Clone()
	depth := q.queuedCountLocked()
	q.mu.Unlock()

	var timer metrics.Timer
	if q.metrics != nil {
		q.metrics.QueueDepth.Set(float64(depth))
		timer = q.metrics.JobDuration()
	}

	err := q.worker(ctx, work)

	completed := time.Now()
	q.mu.Lock()
	job.CompletedAt = &completed
	job.OutputPath = work.OutputPath
	job.Stats = work.Stats
	if err != nil {
		job.Status = models.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = models.JobCompleted
		job.Progress = 100
	}
	q.mu.Unlock()

	if q.metrics != nil {
		timer.ObserveDuration()
		if err != nil {
			q.metrics.JobsFailed.Inc(1)
		} else {
			q.metrics.JobsCompleted.Inc(1)
		}
	}
}
