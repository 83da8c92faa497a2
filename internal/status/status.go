// Package status exposes run progress over HTTP while a normalization pass is
// iterating. It is read-only and optional; the run itself never depends on it.
package status

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phonefix/internal/run"
)

// Tracker records the latest run.Progress. Safe for concurrent use: the run
// loop writes, HTTP handlers read.
type Tracker struct {
	mu   sync.RWMutex
	last run.Progress
}

func NewTracker() *Tracker {
	return &Tracker{last: run.Progress{Phase: run.PhaseInit}}
}

// Update is shaped to plug straight into run.Options.OnProgress.
func (t *Tracker) Update(p run.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = p
}

func (t *Tracker) snapshot() run.Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Router serves /healthz, /status and /metrics.
func Router(tracker *Tracker, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		p := tracker.snapshot()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"phase":     string(p.Phase),
			"processed": p.Processed,
			"total":     p.Total,
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
