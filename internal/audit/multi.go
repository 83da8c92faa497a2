package audit

import (
	"context"
	"log/slog"
)

// MultiSink writes to a primary sink and fans out to best-effort mirrors.
// A mirror failure is logged and swallowed: only the primary decides whether
// an append succeeded. Close errors from mirrors are swallowed the same way.
type MultiSink struct {
	primary Sink
	mirrors []Sink
	log     *slog.Logger
}

func NewMultiSink(log *slog.Logger, primary Sink, mirrors ...Sink) *MultiSink {
	return &MultiSink{primary: primary, mirrors: mirrors, log: log}
}

func (m *MultiSink) Append(ctx context.Context, out Outcome) error {
	err := m.primary.Append(ctx, out)
	for _, mirror := range m.mirrors {
		if merr := mirror.Append(ctx, out); merr != nil {
			m.log.Warn("audit mirror append failed", "error", merr)
		}
	}
	return err
}

func (m *MultiSink) NoCandidates(ctx context.Context) error {
	err := m.primary.NoCandidates(ctx)
	for _, mirror := range m.mirrors {
		if merr := mirror.NoCandidates(ctx); merr != nil {
			m.log.Warn("audit mirror append failed", "error", merr)
		}
	}
	return err
}

func (m *MultiSink) Close() error {
	err := m.primary.Close()
	for _, mirror := range m.mirrors {
		if merr := mirror.Close(); merr != nil {
			m.log.Warn("audit mirror close failed", "error", merr)
		}
	}
	return err
}
