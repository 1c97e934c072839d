package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasync/internal/domain"
	"metasync/internal/service/changedetect"
	"metasync/internal/service/mapper"
	"metasync/internal/service/orchestrator"
	"metasync/internal/testutil"
	"metasync/internal/transform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer starts an orchestrator with one queued job, scheduled far in
// the future so it stays inspectable and cancellable.
func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()

	logger := discardLogger()
	sink := &testutil.MockAuditSink{}
	m := mapper.New(transform.NewRegistry().SeedDefaults(), sink, logger)
	detector := changedetect.New(testutil.NewMockCheckpointStore(), logger)
	orch := orchestrator.New(orchestrator.Config{Workers: 1, TickInterval: time.Hour}, m, detector, sink, logger)

	require.NoError(t, orch.Start(context.Background()))
	t.Cleanup(orch.Stop)

	jobID, err := orch.SubmitJob(context.Background(), &domain.SyncJob{
		AssetID:      "a-1",
		AssetType:    domain.AssetTypeTable,
		SourceSystem: "datasphere",
		TargetSystem: "catalog",
		ScheduledAt:  time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	return NewHandler(orch, logger).Routes(), jobID
}

func doRequest(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)
	rec := doRequest(t, handler, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandler_Metrics(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)
	rec := doRequest(t, handler, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	var metrics orchestrator.SyncMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 1, metrics.TotalJobs)
	assert.Equal(t, 1, metrics.QueueDepth)
	assert.Equal(t, 1, metrics.ByStatus[domain.JobStatusPending])
}

func TestHandler_ListJobs(t *testing.T) {
	t.Parallel()

	handler, jobID := newTestServer(t)
	rec := doRequest(t, handler, http.MethodGet, "/jobs")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Jobs  []domain.SyncJob `json:"jobs"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, jobID, body.Jobs[0].ID)
}

func TestHandler_GetJob(t *testing.T) {
	t.Parallel()

	handler, jobID := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/jobs/"+jobID)
	require.Equal(t, http.StatusOK, rec.Code)
	var job domain.SyncJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "a-1", job.AssetID)
	assert.Equal(t, domain.JobStatusPending, job.Status)

	rec = doRequest(t, handler, http.MethodGet, "/jobs/no-such-job")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CancelJob(t *testing.T) {
	t.Parallel()

	handler, jobID := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/jobs/"+jobID+"/cancel")
	require.Equal(t, http.StatusOK, rec.Code)

	// Cancelling again conflicts: the job already left the queue.
	rec = doRequest(t, handler, http.MethodPost, "/jobs/"+jobID+"/cancel")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// An unknown job is a bad request, not a conflict.
	rec = doRequest(t, handler, http.MethodPost, "/jobs/no-such-job/cancel")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
