package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one run.
type Metrics struct {
	Applied   prometheus.Counter
	Simulated prometheus.Counter
	Rejected  prometheus.Counter
	Failed    prometheus.Counter

	Candidates prometheus.Gauge
	Processed  prometheus.Gauge
}

// New registers all instruments on the given registerer. Taking the
// registerer explicitly keeps tests free of global-registry collisions.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Applied: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonefix_records_applied_total",
			Help: "Records whose new number was persisted to the directory.",
		}),
		Simulated: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonefix_records_simulated_total",
			Help: "Records transformed but not persisted (simulate mode).",
		}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonefix_records_rejected_total",
			Help: "Records rejected by validation.",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "phonefix_records_failed_total",
			Help: "Records whose directory update errored.",
		}),
		Candidates: factory.NewGauge(prometheus.GaugeOpts{
			Name: "phonefix_run_candidates",
			Help: "Candidate accounts returned by the directory query.",
		}),
		Processed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "phonefix_run_processed",
			Help: "Records processed so far in the current run.",
		}),
	}
}

// Observe bumps the counter matching one outcome result label.
func (m *Metrics) Observe(result string) {
	switch result {
	case "Applied":
		m.Applied.Inc()
	case "SimulatedOnly":
		m.Simulated.Inc()
	case "RejectedValidation":
		m.Rejected.Inc()
	case "Failed":
		m.Failed.Inc()
	}
}
