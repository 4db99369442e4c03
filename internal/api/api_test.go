package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/filedrop/internal/api/handlers"
	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/andresuchdata/filedrop/internal/pipeline"
	"github.com/andresuchdata/filedrop/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingStore struct{}

func (failingStore) PutFile(context.Context, string, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, errors.New("bucket unreachable")
}

func (failingStore) Bucket() string { return "reports" }

type fakeRuns struct {
	runs []*domain.Run
	err  error
}

func (f *fakeRuns) SaveRun(context.Context, *domain.Run) error { return nil }

func (f *fakeRuns) ListRecentRuns(_ context.Context, limit int) ([]*domain.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type processResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Result     struct {
		RunID string `json:"run_id"`
		Steps []struct {
			Step   string `json:"step"`
			Status string `json:"status"`
		} `json:"steps"`
	} `json:"result"`
}

func newFailingPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(
		pipeline.Config{WorkDir: t.TempDir(), MinLines: 1, MaxLines: 1},
		pipeline.Dependencies{Store: failingStore{}},
		pipeline.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	return p
}

func TestProcessAlwaysReturnsOK(t *testing.T) {
	router := NewRouter(&Services{Processor: newFailingPipeline(t)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader(`{"source":"scheduler"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.StatusCode)
	assert.Equal(t, handlers.CompletionMessage, body.Message)
	assert.NotEmpty(t, body.Result.RunID)

	statuses := map[string]string{}
	for _, s := range body.Result.Steps {
		statuses[s.Step] = s.Status
	}
	assert.Equal(t, "failed", statuses["upload"])
	assert.Equal(t, "not_run", statuses["notify"])
	assert.Equal(t, "succeeded", statuses["cleanup"])
}

func TestHealth(t *testing.T) {
	router := NewRouter(nil, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListRunsDisabled(t *testing.T) {
	router := NewRouter(&Services{Processor: newFailingPipeline(t)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{runs: []*domain.Run{
		{RunID: "r1", FileName: "a.txt", Lines: 5, UploadStatus: domain.StepSucceeded},
		{RunID: "r2", FileName: "b.txt", Lines: 7, UploadStatus: domain.StepFailed},
	}}
	router := NewRouter(&Services{Processor: newFailingPipeline(t), Runs: runs}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id":"r1"`)
	assert.NotContains(t, rec.Body.String(), `"run_id":"r2"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	runs.err = errors.New("db down")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
