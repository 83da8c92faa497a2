package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"phonefix/internal/audit"
	"phonefix/internal/directory"
	"phonefix/internal/directory/mocks"
	"phonefix/internal/directory/store/memory"
	"phonefix/internal/platform/metrics"
	"phonefix/internal/precheck"
)

var fixedStart = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passingCheck() precheck.Check {
	return precheck.Check{Name: "always", Run: func(context.Context) error { return nil }}
}

func fileSinkFactory(dir string) SinkFactory {
	return func(started time.Time, runID uuid.UUID) (audit.Sink, string, error) {
		sink, err := audit.NewFileSink(dir, started, runID)
		if err != nil {
			return nil, "", err
		}
		return sink, sink.Path(), nil
	}
}

func newTestController(gw directory.Gateway, dir string, simulate bool) *Controller {
	return NewController(Options{
		Gateway:      gw,
		OpenSink:     fileSinkFactory(dir),
		Checks:       []precheck.Check{passingCheck()},
		SimulateOnly: simulate,
		Log:          discardLogger(),
		Metrics:      metrics.New(prometheus.NewRegistry()),
		Clock:        func() time.Time { return fixedStart },
	})
}

// failOne wraps a gateway and fails the update for a single identity, leaving
// the rest untouched.
type failOne struct {
	directory.Gateway
	identity string
}

func (f *failOne) UpdateNumber(ctx context.Context, identity, newValue string) error {
	if identity == f.identity {
		return errors.New("server unwilling to perform")
	}
	return f.Gateway.UpdateNumber(ctx, identity, newValue)
}

func seedStore() (*memory.InMemory, []directory.Account) {
	store := memory.NewInMemory()
	accounts := []directory.Account{
		{Identity: "id-ada", DisplayName: "Ada Lovelace", PrincipalName: "ada@example.org", OldNumber: "0207 123 4567"},
		{Identity: "id-alan", DisplayName: "Alan Turing", PrincipalName: "alan@example.org", OldNumber: "01234567"},
		{Identity: "id-grace", DisplayName: "Grace Hopper", PrincipalName: "grace@example.org", OldNumber: "0131 496 0000"},
	}
	for _, acct := range accounts {
		store.Seed(acct)
	}
	return store, accounts
}

func logLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRun_ProcessesFullBatch(t *testing.T) {
	store, _ := seedStore()
	dir := t.TempDir()

	summary, err := newTestController(store, dir, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 0, summary.Failed)

	// Two header lines plus exactly one line per candidate.
	lines := logLines(t, summary.LogPath)
	assert.Len(t, lines, 2+summary.Total)

	number, ok := store.Number("id-ada")
	require.True(t, ok)
	assert.Equal(t, "+442071234567", number)
	number, _ = store.Number("id-grace")
	assert.Equal(t, "+441314960000", number)
	number, _ = store.Number("id-alan")
	assert.Equal(t, "01234567", number, "rejected record left untouched")
}

func TestRun_ContinuesPastFailingRecord(t *testing.T) {
	store, _ := seedStore()
	gw := &failOne{Gateway: store, identity: "id-ada"}
	dir := t.TempDir()

	summary, err := newTestController(gw, dir, false).Run(context.Background())
	require.NoError(t, err, "per-record failure must not fail the run")

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 1, summary.Rejected)

	lines := logLines(t, summary.LogPath)
	require.Len(t, lines, 5)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "server unwilling to perform")

	// The record after the failing one was still applied.
	number, _ := store.Number("id-grace")
	assert.Equal(t, "+441314960000", number)
}

func TestRun_SimulateWritesNothing(t *testing.T) {
	store, accounts := seedStore()
	dir := t.TempDir()

	summary, err := newTestController(store, dir, true).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Simulated)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 0, summary.Applied)

	for _, acct := range accounts {
		number, ok := store.Number(acct.Identity)
		require.True(t, ok)
		assert.Equal(t, acct.OldNumber, number, "simulate mode must not mutate %s", acct.Identity)
	}

	joined := strings.Join(logLines(t, summary.LogPath), "\n")
	assert.Contains(t, joined, "TestWithNoChanges")
	assert.NotContains(t, joined, ",Success,")
}

func TestRun_NoCandidates(t *testing.T) {
	store := memory.NewInMemory()
	dir := t.TempDir()

	summary, err := newTestController(store, dir, false).Run(context.Background())
	require.NoError(t, err, "empty result is not an error")

	assert.Equal(t, 0, summary.Total)
	lines := logLines(t, summary.LogPath)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "no candidates")
}

func TestRun_AbortsBeforeLogOnFailedPrecheck(t *testing.T) {
	store, _ := seedStore()
	dir := t.TempDir()

	var phases []Phase
	var sinkOpens int
	countingFactory := func(started time.Time, runID uuid.UUID) (audit.Sink, string, error) {
		sinkOpens++
		return fileSinkFactory(dir)(started, runID)
	}
	ctrl := NewController(Options{
		Gateway:  store,
		OpenSink: countingFactory,
		Checks: []precheck.Check{
			{Name: "elevated privileges", Run: func(context.Context) error { return errors.New("not root") }},
		},
		Log:        discardLogger(),
		Clock:      func() time.Time { return fixedStart },
		OnProgress: func(p Progress) { phases = append(phases, p.Phase) },
	})

	summary, err := ctrl.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `precondition "elevated privileges"`)
	assert.Empty(t, summary.LogPath)

	// The sink factory carries every external sink side effect (log file,
	// mirror connection); an aborted precondition check must never reach it.
	assert.Zero(t, sinkOpens)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)

	assert.Equal(t, []Phase{PhaseInit, PhaseAborted}, phases)

	// Nothing was mutated.
	number, _ := store.Number("id-ada")
	assert.Equal(t, "0207 123 4567", number)
}

func TestRun_AbortsOnQueryFailure(t *testing.T) {
	mctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(mctrl)
	gw.EXPECT().QueryCandidates(gomock.Any()).Return(nil, errors.New("directory offline"))
	gw.EXPECT().UpdateNumber(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	dir := t.TempDir()
	_, err := newTestController(gw, dir, false).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory offline")
}

func TestRun_ProgressReachesDone(t *testing.T) {
	store, _ := seedStore()
	dir := t.TempDir()

	var last Progress
	ctrl := NewController(Options{
		Gateway:    store,
		OpenSink:   fileSinkFactory(dir),
		Checks:     []precheck.Check{passingCheck()},
		Log:        discardLogger(),
		Clock:      func() time.Time { return fixedStart },
		OnProgress: func(p Progress) { last = p },
	})

	_, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, last.Phase)
	assert.Equal(t, 3, last.Processed)
	assert.Equal(t, 3, last.Total)
}

func TestRun_LogPathUnderGivenDir(t *testing.T) {
	store, _ := seedStore()
	dir := t.TempDir()

	summary, err := newTestController(store, dir, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(summary.LogPath))
	assert.True(t, strings.HasSuffix(summary.LogPath, audit.FileSuffix))
}
