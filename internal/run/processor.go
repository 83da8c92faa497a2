package run

import (
	"context"

	"phonefix/internal/audit"
	"phonefix/internal/directory"
	"phonefix/internal/phone"
)

// simulatedMessage is recorded so readers of the log can tell a suppressed
// write from a real one.
const simulatedMessage = "simulation mode: no change made"

// Processor turns one candidate account into exactly one Outcome, with at
// most one directory mutation as a side effect. Per-record failures are
// captured in the Outcome, never returned, so a bad record cannot stop the
// batch.
type Processor struct {
	gw directory.Gateway
}

func NewProcessor(gw directory.Gateway) *Processor {
	return &Processor{gw: gw}
}

// Process transforms the account's number, persists it unless simulateOnly is
// set, and reports what happened. No retries.
func (p *Processor) Process(ctx context.Context, acct directory.Account, simulateOnly bool) audit.Outcome {
	out := audit.Outcome{
		Identity:      acct.Identity,
		DisplayName:   acct.DisplayName,
		PrincipalName: acct.PrincipalName,
		OldNumber:     acct.OldNumber,
	}

	res := phone.Transform(acct.OldNumber)
	if !res.Accepted {
		out.Result = audit.ResultRejected
		out.Message = res.Reason
		return out
	}

	out.NewNumber = res.NewNumber

	if simulateOnly {
		out.Result = audit.ResultSimulated
		out.Message = simulatedMessage
		return out
	}

	if err := p.gw.UpdateNumber(ctx, acct.Identity, res.NewNumber); err != nil {
		out.Result = audit.ResultFailed
		out.Message = err.Error()
		return out
	}

	out.Result = audit.ResultApplied
	return out
}
