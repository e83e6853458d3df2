package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a cloud transform job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ProcessingStats counts what each pipeline stage actually did to a
// file's strokes. A stage only increments its own counter when it
// produced a delta, not whenever any stage changed the stroke.
type ProcessingStats struct {
	StrokesProcessed    int
	StrokesSmoothed     int
	StrokesSimplified   int
	StrokesStraightened int
	StrokesNormalized   int
	StrokesSkipped      int
	ProcessingTimeMS    *int64
}

// JobRecord is the server-side record of one cloud transform job.
type JobRecord struct {
	JobID         uuid.UUID
	TenantID      string
	Status        JobStatus
	Preset        string
	InputFilename string
	InputPath     string
	OutputPath    string

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Progress int
	Error    string
	Stats    *ProcessingStats
}

// NewJobRecord constructs a freshly queued job record with a
// server-generated id.
func NewJobRecord(tenantID, preset, filename, inputPath string, now time.Time) *JobRecord {
	return &JobRecord{
		JobID:         uuid.New(),
		TenantID:      tenantID,
		Status:        JobQueued,
		Preset:        preset,
		InputFilename: filename,
		InputPath:     inputPath,
		CreatedAt:     now,
		Progress:      0,
	}
}

// Clone returns a deep-enough copy of the record so callers can hand out
// snapshots without letting readers observe in-progress worker mutation.
func (j *JobRecord) Clone() *JobRecord {
	if j == nil {
		return nil
	}
	cp := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.Stats != nil {
		st := *j.Stats
		cp.Stats = &st
	}
	return &cp
}
