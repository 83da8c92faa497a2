// Package audit captures the structured outcome of every processed account.
// Sinks are append-only so a run killed mid-iteration leaves every already
// written entry valid.
package audit

import "context"

// Result classifies how one record ended.
type Result string

const (
	// ResultApplied means the new number was persisted to the directory.
	ResultApplied Result = "Applied"
	// ResultSimulated means the transform succeeded but simulate mode
	// suppressed the write.
	ResultSimulated Result = "SimulatedOnly"
	// ResultRejected means the value failed validation; no directory call
	// was made.
	ResultRejected Result = "RejectedValidation"
	// ResultFailed means the directory update was attempted and errored.
	ResultFailed Result = "Failed"
)

// Label maps a result onto the fixed vocabulary of the log file. The file
// format predates the rejected/failed split, so both collapse to "Failed"
// there; the structured Outcome keeps the distinction.
func (r Result) Label() string {
	switch r {
	case ResultApplied:
		return "Success"
	case ResultSimulated:
		return "TestWithNoChanges"
	default:
		return "Failed"
	}
}

// Outcome is the record of one processed account. NewNumber is empty when the
// record was rejected before a number was computed; Message is empty on
// success.
type Outcome struct {
	Identity      string
	DisplayName   string
	PrincipalName string
	OldNumber     string
	NewNumber     string
	Result        Result
	Message       string
}

// Sink is an append-only outcome log.
type Sink interface {
	Append(ctx context.Context, out Outcome) error
	// NoCandidates records the informational entry for an empty query result.
	NoCandidates(ctx context.Context) error
	Close() error
}
