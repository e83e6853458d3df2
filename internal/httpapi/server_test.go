package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inksight/internal/cloudproc"
	"inksight/internal/config"
	"inksight/internal/jobqueue"
	"inksight/internal/ratelimit"
	"inksight/internal/sceneio"
	"inksight/internal/storage"
	"inksight/pkg/models"
)

const (
	keyTenantA = "iks_live_tenant_a"
	keyTenantB = "iks_live_tenant_b"
)

func newTestServer(t *testing.T) (*Server, *jobqueue.Queue) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.DefaultCloudConfig()
	cfg.APIKeys = keyTenantA + "," + keyTenantB
	cfg.StorageDir = t.TempDir()
	cfg.MaxFileSizeMB = 1

	store, err := storage.New(cfg.StorageDir)
	require.NoError(t, err)

	proc := cloudproc.NewProcessor(store, nil, nil)
	queue := jobqueue.New(ctx, proc.Process)

	return NewServer(cfg, queue, store, nil, nil, nil), queue
}

func sceneBytes(t *testing.T, blocks []sceneio.Block) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, sceneio.EncodeBlocks(&buf, blocks))
	return buf.Bytes()
}

func wavyScene(t *testing.T) []byte {
	pts := make([]models.Point, 7)
	xs := []float64{10, 20, 30, 40, 50, 60, 70}
	ys := []float64{10, 32, -8, 35, -5, 30, 10}
	for i := range pts {
		pts[i] = models.Point{X: xs[i], Y: ys[i], Pressure: 128}
	}
	return sceneBytes(t, []sceneio.Block{
		{Tag: 9, Raw: []byte("header")},
		{Tag: sceneio.LineItemTag, Stroke: &models.Stroke{ToolID: 1, Points: pts}},
	})
}

func multipartUpload(t *testing.T, filename, preset string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	if preset != "" {
		require.NoError(t, mw.WriteField("preset", preset))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doUpload(t *testing.T, h http.Handler, apiKey, filename, preset string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, preset, content)
	req := httptest.NewRequest(http.MethodPost, "/transform", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(APIKeyHeader, apiKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doGet(h http.Handler, apiKey, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRootAndHealthAreUnauthenticated(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doGet(h, "", "/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(h, "", "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthMissingAndInvalidKey(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doGet(h, "", "/transforms")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGet(h, "not-a-key", "/transforms")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doUpload(t, h, keyTenantA, "notes.txt", "medium", []byte("not a scene"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-scene extension")

	rec = doUpload(t, h, keyTenantA, "notes.rm", "extreme", wavyScene(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown preset")

	oversized := make([]byte, 2*1024*1024)
	rec = doUpload(t, h, keyTenantA, "big.rm", "medium", oversized)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, "oversized upload")
}

func TestUploadDefaultsToMediumPreset(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doUpload(t, h, keyTenantA, "notes.rm", "", wavyScene(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transformResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestStatusUnknownJobIs404(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doGet(h, keyTenantA, "/status/3f0c7a2e-0000-0000-0000-000000000000")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doGet(h, keyTenantA, "/status/not-a-uuid")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadStatusDownloadRoundTrip(t *testing.T) {
	// Upload, poll until completed, download, and verify the artifact
	// decodes to the same number of blocks as the input.
	s, _ := newTestServer(t)
	h := s.Handler()

	input := wavyScene(t)
	rec := doUpload(t, h, keyTenantA, "notes.rm", "medium", input)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created transformResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	var status statusResponse
	require.Eventually(t, func() bool {
		rec := doGet(h, keyTenantA, "/status/"+created.JobID.String())
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 100, status.Progress)
	require.NotEmpty(t, status.DownloadURL)
	require.NotNil(t, status.Stats)
	assert.Equal(t, 1, status.Stats.StrokesProcessed)

	dl := doGet(h, keyTenantA, status.DownloadURL)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "application/octet-stream", dl.Header().Get("Content-Type"))

	inBlocks, err := sceneio.DecodeBlocks(bytes.NewReader(input))
	require.NoError(t, err)
	outBlocks, err := sceneio.DecodeBlocks(bytes.NewReader(dl.Body.Bytes()))
	require.NoError(t, err)
	assert.Len(t, outBlocks, len(inBlocks))
}

func TestDownloadBeforeCompletionIs400(t *testing.T) {
	s, queue := newTestServer(t)
	h := s.Handler()

	// enqueue a job record directly in queued state with an input path
	// that doesn't exist, so the worker can't race it to completion
	// before the request below; if it does fail first, that is a
	// terminal non-completed status and still exercises the guard.
	job := models.NewJobRecord(keyTenantA, "medium", "stuck.rm", "/nonexistent/stuck.rm", time.Now().UTC())
	queue.Enqueue(job)

	rec := doGet(h, keyTenantA, "/download/"+job.JobID.String()+".rm")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrossTenantIsolation(t *testing.T) {
	// Tenant A uploads; tenant B can neither see the job's status nor
	// find it in its own listing.
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doUpload(t, h, keyTenantA, "notes.rm", "medium", wavyScene(t))
	require.Equal(t, http.StatusOK, rec.Code)
	var created transformResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doGet(h, keyTenantB, "/status/"+created.JobID.String())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doGet(h, keyTenantB, "/download/"+created.JobID.String()+".rm")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	listA := doGet(h, keyTenantA, "/transforms")
	require.Equal(t, http.StatusOK, listA.Code)
	var historyA historyResponse
	require.NoError(t, json.Unmarshal(listA.Body.Bytes(), &historyA))
	require.Equal(t, 1, historyA.Total)
	assert.Equal(t, created.JobID, historyA.Transforms[0].JobID)

	listB := doGet(h, keyTenantB, "/transforms")
	require.Equal(t, http.StatusOK, listB.Code)
	var historyB historyResponse
	require.NoError(t, json.Unmarshal(listB.Body.Bytes(), &historyB))
	assert.Equal(t, 0, historyB.Total)
}

func TestListLimitValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for _, path := range []string{"/transforms?limit=0", "/transforms?limit=1001", "/transforms?limit=abc"} {
		rec := doGet(h, keyTenantA, path)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
	}

	rec := doGet(h, keyTenantA, "/transforms?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	s, _ := newTestServer(t)
	s.limiter = ratelimit.NewTenantLimiter(ratelimit.Config{RequestsPerSecond: 0.001, Burst: 2})
	h := s.Handler()

	assert.Equal(t, http.StatusOK, doGet(h, keyTenantA, "/transforms").Code)
	assert.Equal(t, http.StatusOK, doGet(h, keyTenantA, "/transforms").Code)

	rec := doGet(h, keyTenantA, "/transforms")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// another tenant is unaffected.
	assert.Equal(t, http.StatusOK, doGet(h, keyTenantB, "/transforms").Code)
}

func TestDevModeWithoutKeysAcceptsAnyRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.DefaultCloudConfig()
	cfg.StorageDir = t.TempDir()
	store, err := storage.New(cfg.StorageDir)
	require.NoError(t, err)
	queue := jobqueue.New(ctx, func(ctx context.Context, job *models.JobRecord) error { return nil })

	s := NewServer(cfg, queue, store, nil, nil, nil)
	rec := doGet(s.Handler(), "", "/transforms")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/transform", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
