// Package directory defines the gateway abstraction over the user directory.
// The run controller only ever sees this interface; LDAP, Postgres and
// in-memory backends live under store/.
package directory

import "context"

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks

// Account is one directory principal under change. Identity is the stable
// opaque key used for updates (never the mutable display name) and is never
// recomputed after the initial read.
type Account struct {
	Identity      string
	DisplayName   string
	PrincipalName string
	OldNumber     string
}

// Gateway is the contract every directory backend implements.
//
// QueryCandidates returns every account whose telephone attribute begins with
// '0', fully populated. Ordering is unspecified and callers must not rely on
// it. A query failure is fatal at startup.
//
// UpdateNumber replaces the telephone attribute on the account addressed by
// identity. It is idempotent from the caller's perspective: re-invoking with
// the same value produces the same end state. An update failure is a
// per-record, non-fatal condition.
//
// Ping probes reachability for the precondition gate.
type Gateway interface {
	QueryCandidates(ctx context.Context) ([]Account, error)
	UpdateNumber(ctx context.Context, identity, newValue string) error
	Ping(ctx context.Context) error
}

// CandidatePrefix is the filter character shared by every backend query.
const CandidatePrefix = "0"
