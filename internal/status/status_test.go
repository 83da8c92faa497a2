package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonefix/internal/run"
)

func TestStatusEndpoint(t *testing.T) {
	tracker := NewTracker()
	srv := httptest.NewServer(Router(tracker, prometheus.NewRegistry()))
	defer srv.Close()

	t.Run("healthz", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("reports initial phase", func(t *testing.T) {
		body := getStatus(t, srv.URL)
		assert.Equal(t, "Init", body["phase"])
	})

	t.Run("reflects progress updates", func(t *testing.T) {
		tracker.Update(run.Progress{Phase: run.PhaseIterating, Processed: 7, Total: 42})

		body := getStatus(t, srv.URL)
		assert.Equal(t, "Iterating", body["phase"])
		assert.EqualValues(t, 7, body["processed"])
		assert.EqualValues(t, 42, body["total"])
	})

	t.Run("serves metrics", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

func getStatus(t *testing.T, base string) map[string]any {
	t.Helper()
	res, err := http.Get(base + "/status")
	require.NoError(t, err)
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}
