package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ldes-tools/harvester/internal/harvester"
	"github.com/ldes-tools/harvester/internal/metrics"
)

type staticSource struct{ st harvester.State }

func (s staticSource) Snapshot() harvester.State { return s.st }

func TestHealthz(t *testing.T) {
	srv := New("127.0.0.1:0", staticSource{}, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStatusz(t *testing.T) {
	source := staticSource{st: harvester.State{
		RunID:            "run-1",
		ProcessedPages:   []string{"https://x/1"},
		ProcessedMembers: []string{"m1", "m2"},
		PendingPages:     []string{"https://x/2"},
		Stats: harvester.Stats{
			StartTime:        "2026-03-01T12:00:00Z",
			MembersHarvested: 2,
			PagesProcessed:   1,
		},
		LastUpdated: "2026-03-01T12:00:05Z",
	}}
	srv := New("127.0.0.1:0", source, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statusz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got harvester.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, source.st, got)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Init()
	srv := New("127.0.0.1:0", staticSource{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "harvester_pages_processed_total")
}
