package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ldes-tools/harvester/internal/harvester"
)

func newTestFetcher(t *testing.T, maxAttempts int) *Fetcher {
	t.Helper()
	return New(
		Config{UserAgent: "harvester-test", Timeout: 5 * time.Second},
		harvester.NewRetryPolicy(maxAttempts, time.Millisecond),
		zaptest.NewLogger(t),
	)
}

func TestFetchDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "harvester-test", r.UserAgent())
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write([]byte(`{"@id": "https://x/1", "member": [{"@id": "m1"}]}`))
	}))
	defer srv.Close()

	doc, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://x/1", doc["@id"])
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"@id": "https://x/1"}`))
	}))
	defer srv.Close()

	doc, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://x/1", doc["@id"])
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var ferr *harvester.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, srv.URL, ferr.URL)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var serr *harvester.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Code)
	// A 404 is permanent; no second attempt is made.
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchMalformedBody(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var perr *harvester.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, srv.URL, perr.URL)
	// A malformed body is not a transport failure and is never retried.
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(t, 3).Fetch(ctx, srv.URL)
	require.Error(t, err)

	var ferr *harvester.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, context.Canceled)
}
