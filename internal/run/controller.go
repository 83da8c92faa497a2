// Package run sequences one normalization pass: precondition gate, candidate
// query, per-record transform/apply loop, audit append. The pass is strictly
// linear; per-record failures are recorded and skipped over, only startup
// failures abort.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"phonefix/internal/audit"
	"phonefix/internal/directory"
	"phonefix/internal/platform/metrics"
	"phonefix/internal/precheck"
)

// Phase is the controller's externally observable state.
type Phase string

const (
	PhaseInit          Phase = "Init"
	PhasePreconditions Phase = "PreconditionsChecked"
	PhaseLogOpened     Phase = "LogOpened"
	PhaseQueried       Phase = "Queried"
	PhaseIterating     Phase = "Iterating"
	PhaseDone          Phase = "Done"
	PhaseAborted       Phase = "Aborted"
)

// Progress is pushed to the progress callback after every transition and
// every processed record. It has no bearing on correctness.
type Progress struct {
	Phase     Phase
	Processed int
	Total     int
}

// SinkFactory opens the audit sink once preconditions have passed. It returns
// the sink plus the path readers should be pointed at. Deferring creation to
// a factory keeps the ordering guarantee: no log file exists for an aborted
// precondition check.
type SinkFactory func(started time.Time, runID uuid.UUID) (audit.Sink, string, error)

// Options wires a Controller. Gateway, OpenSink and Log are required; RunID,
// Clock and OnProgress default to a fresh UUID, time.Now and a no-op.
type Options struct {
	// RunID identifies the run in the log header, lock and mirror events.
	// Injected so main can stamp the same ID everywhere.
	RunID        uuid.UUID
	Gateway      directory.Gateway
	OpenSink     SinkFactory
	Checks       []precheck.Check
	SimulateOnly bool
	Log          *slog.Logger
	Metrics      *metrics.Metrics
	Clock        func() time.Time
	OnProgress   func(Progress)
}

// Controller owns one run. It is not reusable across runs.
type Controller struct {
	opts      Options
	processor *Processor
}

func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.OnProgress == nil {
		opts.OnProgress = func(Progress) {}
	}
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	return &Controller{
		opts:      opts,
		processor: NewProcessor(opts.Gateway),
	}
}

// Summary reports how a completed run went. Per-record failures do not make
// the run itself a failure.
type Summary struct {
	RunID    uuid.UUID
	Started  time.Time
	Duration time.Duration
	LogPath  string

	Total     int
	Applied   int
	Simulated int
	Rejected  int
	Failed    int
}

// Run drives Init -> PreconditionsChecked -> LogOpened -> Queried ->
// Iterating -> Done. Any fatal failure before iteration transitions to
// Aborted and returns the error; once iteration begins the run always
// completes over the full candidate set.
func (c *Controller) Run(ctx context.Context) (Summary, error) {
	started := c.opts.Clock()
	runID := c.opts.RunID
	summary := Summary{RunID: runID, Started: started}

	tracer := otel.Tracer("phonefix/run")
	ctx, span := tracer.Start(ctx, "normalization-run",
		trace.WithAttributes(attribute.String("run.id", runID.String())))
	defer span.End()

	c.opts.OnProgress(Progress{Phase: PhaseInit})

	if err := precheck.All(ctx, c.opts.Checks...); err != nil {
		return c.abort(span, summary, err)
	}
	c.opts.OnProgress(Progress{Phase: PhasePreconditions})

	sink, logPath, err := c.opts.OpenSink(started, runID)
	if err != nil {
		return c.abort(span, summary, fmt.Errorf("open audit sink: %w", err))
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			c.opts.Log.Warn("closing audit sink", "error", cerr)
		}
	}()
	summary.LogPath = logPath
	c.opts.OnProgress(Progress{Phase: PhaseLogOpened})

	candidates, err := c.opts.Gateway.QueryCandidates(ctx)
	if err != nil {
		return c.abort(span, summary, fmt.Errorf("query candidates: %w", err))
	}
	summary.Total = len(candidates)
	span.SetAttributes(attribute.Int("run.candidates", summary.Total))
	if c.opts.Metrics != nil {
		c.opts.Metrics.Candidates.Set(float64(summary.Total))
	}
	c.opts.OnProgress(Progress{Phase: PhaseQueried, Total: summary.Total})

	if summary.Total == 0 {
		c.opts.Log.Info("no candidates found", "run_id", runID)
		if err := sink.NoCandidates(ctx); err != nil {
			c.opts.Log.Warn("recording no-candidates entry", "error", err)
		}
		summary.Duration = c.opts.Clock().Sub(started)
		c.opts.OnProgress(Progress{Phase: PhaseDone})
		return summary, nil
	}

	for i, acct := range candidates {
		_, recSpan := tracer.Start(ctx, "process-record")
		out := c.processor.Process(ctx, acct, c.opts.SimulateOnly)
		recSpan.SetAttributes(attribute.String("record.result", string(out.Result)))
		recSpan.End()

		c.record(&summary, out)
		if err := sink.Append(ctx, out); err != nil {
			// The sink was creatable at startup; a later append failure is
			// per-record, same as an apply failure.
			c.opts.Log.Warn("appending outcome", "principal", out.PrincipalName, "error", err)
		}

		c.opts.OnProgress(Progress{Phase: PhaseIterating, Processed: i + 1, Total: summary.Total})
		if c.opts.Metrics != nil {
			c.opts.Metrics.Processed.Set(float64(i + 1))
		}
	}

	summary.Duration = c.opts.Clock().Sub(started)
	c.opts.Log.Info("run complete",
		"run_id", runID,
		"total", summary.Total,
		"applied", summary.Applied,
		"simulated", summary.Simulated,
		"rejected", summary.Rejected,
		"failed", summary.Failed,
		"log", summary.LogPath,
	)
	c.opts.OnProgress(Progress{Phase: PhaseDone, Processed: summary.Total, Total: summary.Total})
	return summary, nil
}

func (c *Controller) record(summary *Summary, out audit.Outcome) {
	switch out.Result {
	case audit.ResultApplied:
		summary.Applied++
	case audit.ResultSimulated:
		summary.Simulated++
	case audit.ResultRejected:
		summary.Rejected++
	case audit.ResultFailed:
		summary.Failed++
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.Observe(string(out.Result))
	}
	if out.Result == audit.ResultFailed {
		c.opts.Log.Warn("record update failed", "principal", out.PrincipalName, "error", out.Message)
	}
}

func (c *Controller) abort(span trace.Span, summary Summary, err error) (Summary, error) {
	span.RecordError(err)
	c.opts.OnProgress(Progress{Phase: PhaseAborted})
	return summary, err
}
