package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"inksight/internal/telemetry/health"
	"inksight/pkg/models"
)

// transformResponse is the envelope returned by POST /transform.
type transformResponse struct {
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// statsBody is the wire projection of models.ProcessingStats.
type statsBody struct {
	StrokesProcessed    int    `json:"strokes_processed"`
	StrokesSmoothed     int    `json:"strokes_smoothed"`
	StrokesSimplified   int    `json:"strokes_simplified"`
	StrokesStraightened int    `json:"strokes_straightened"`
	StrokesNormalized   int    `json:"strokes_normalized"`
	StrokesSkipped      int    `json:"strokes_skipped"`
	ProcessingTimeMS    *int64 `json:"processing_time_ms,omitempty"`
}

// statusResponse is the record projection returned by GET /status/{id}.
type statusResponse struct {
	JobID        uuid.UUID  `json:"job_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DownloadURL  string     `json:"download_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Stats        *statsBody `json:"stats,omitempty"`
}

type historyItem struct {
	JobID       uuid.UUID  `json:"job_id"`
	Status      string     `json:"status"`
	Preset      string     `json:"preset"`
	Filename    string     `json:"filename"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type historyResponse struct {
	Transforms []historyItem `json:"transforms"`
	Total      int           `json:"total"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "InkSight Cloud API",
		"version": Version,
		"status":  "operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Evaluate(r.Context())
	status := http.StatusOK
	if snap.Overall == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status":  snap.Overall,
		"version": Version,
		"probes":  snap.Probes,
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request, tenantID string) {
	maxBytes := int64(s.cfg.MaxFileSizeMB) * 1024 * 1024

	// Bodies up to twice the limit are read in full so the length check
	// below can answer 413 precisely; anything beyond that is cut off
	// at the reader so a runaway upload can't buffer unbounded memory.
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxBytes+64*1024)
	if err := r.ParseMultipartForm(2*maxBytes + 64*1024); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, models.NewError(models.KindTooLarge, "",
				fmt.Errorf("file exceeds limit (%dMB)", s.cfg.MaxFileSizeMB)))
			return
		}
		writeError(w, models.NewError(models.KindBadRequest, "", errors.New("request must be multipart/form-data with a file field")))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, models.NewError(models.KindBadRequest, "", errors.New("missing file field")))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".rm") {
		writeError(w, models.NewError(models.KindBadRequest, "", errors.New("file must be a .rm file")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, models.NewError(models.KindIORead, "read upload", err))
		return
	}
	if int64(len(content)) > maxBytes {
		writeError(w, models.NewError(models.KindTooLarge, "",
			fmt.Errorf("file size (%.1fMB) exceeds limit (%dMB)", float64(len(content))/(1024*1024), s.cfg.MaxFileSizeMB)))
		return
	}

	preset := r.FormValue("preset")
	if preset == "" {
		preset = "medium"
	}
	if !models.KnownPreset(preset) {
		writeError(w, models.NewError(models.KindBadRequest, "",
			fmt.Errorf("invalid preset %q, must be one of: minimal, medium, aggressive", preset)))
		return
	}

	job := models.NewJobRecord(tenantID, preset, header.Filename, "", time.Now().UTC())
	inputPath, err := s.store.SaveInput(tenantID, job.JobID, header.Filename, bytes.NewReader(content))
	if err != nil {
		writeError(w, models.NewError(models.KindIOWrite, "save upload", err))
		return
	}
	job.InputPath = inputPath
	s.queue.Enqueue(job)

	s.log.InfoCtx(r.Context(), "job enqueued",
		"job_id", job.JobID.String(), "tenant", tenantID, "preset", preset, "filename", header.Filename)

	writeJSON(w, http.StatusOK, transformResponse{
		JobID:     job.JobID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
	})
}

// ownedJob looks a job up and enforces tenant ownership. Unknown ids
// and cross-tenant ids are distinguishable (404 vs 403) per contract.
func (s *Server) ownedJob(jobIDRaw, tenantID string) (*models.JobRecord, error) {
	jobID, err := uuid.Parse(jobIDRaw)
	if err != nil {
		return nil, models.NewError(models.KindNotFound, "job "+jobIDRaw, models.ErrJobNotFound)
	}
	job := s.queue.Get(jobID)
	if job == nil {
		return nil, models.NewError(models.KindNotFound, "job "+jobID.String(), models.ErrJobNotFound)
	}
	if job.TenantID != tenantID {
		return nil, models.NewError(models.KindForbidden, "", models.ErrNotOwner)
	}
	return job, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, tenantID string) {
	job, err := s.ownedJob(r.PathValue("job_id"), tenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := statusResponse{
		JobID:        job.JobID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.Error,
	}
	if job.Stats != nil {
		resp.Stats = &statsBody{
			StrokesProcessed:    job.Stats.StrokesProcessed,
			StrokesSmoothed:     job.Stats.StrokesSmoothed,
			StrokesSimplified:   job.Stats.StrokesSimplified,
			StrokesStraightened: job.Stats.StrokesStraightened,
			StrokesNormalized:   job.Stats.StrokesNormalized,
			StrokesSkipped:      job.Stats.StrokesSkipped,
			ProcessingTimeMS:    job.Stats.ProcessingTimeMS,
		}
	}
	if job.Status == models.JobCompleted && job.OutputPath != "" {
		resp.DownloadURL = fmt.Sprintf("/download/%s.rm", job.JobID)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, tenantID string) {
	artifact := r.PathValue("artifact")
	jobIDRaw, ok := strings.CutSuffix(artifact, ".rm")
	if !ok {
		writeError(w, models.NewError(models.KindNotFound, "", fmt.Errorf("artifact %s not found", artifact)))
		return
	}

	job, err := s.ownedJob(jobIDRaw, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	if job.Status != models.JobCompleted {
		writeError(w, models.NewError(models.KindPrecondition,
			fmt.Sprintf("status is %s", job.Status), models.ErrNotCompleted))
		return
	}

	outputPath, err := s.store.FindFile(tenantID, job.JobID, "output")
	if err != nil || outputPath == "" {
		writeError(w, models.NewError(models.KindNotFound, "", errors.New("output file not found")))
		return
	}

	f, err := os.Open(outputPath)
	if err != nil {
		writeError(w, models.NewError(models.KindNotFound, "", errors.New("output file not found")))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.InputFilename))
	_, _ = io.Copy(w, f)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, tenantID string) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "limit must be an integer between 1 and 1000"})
			return
		}
		limit = n
	}

	jobs := s.queue.ListTenant(tenantID, limit)
	items := make([]historyItem, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, historyItem{
			JobID:       job.JobID,
			Status:      string(job.Status),
			Preset:      job.Preset,
			Filename:    job.InputFilename,
			CreatedAt:   job.CreatedAt,
			CompletedAt: job.CompletedAt,
		})
	}

	writeJSON(w, http.StatusOK, historyResponse{Transforms: items, Total: len(items)})
}
