package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/economistry/repec-harvester/internal/pipeline"
)

type staticProgress struct {
	p pipeline.Progress
}

func (s staticProgress) Progress() pipeline.Progress { return s.p }

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(staticProgress{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProgressSnapshot(t *testing.T) {
	t.Parallel()

	srv := NewServer(staticProgress{p: pipeline.Progress{
		RunID:     "run-1",
		Total:     10,
		Done:      4,
		Succeeded: 3,
		Failed:    1,
	}})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got pipeline.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 4, got.Done)
	assert.Equal(t, 3, got.Succeeded)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(staticProgress{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
