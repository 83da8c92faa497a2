package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Directory gateways and sinks
// return these (optionally wrapped) so the run controller can translate them
// into run-level behaviour.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: account does not exist in the directory
// - ErrUnavailable: directory or sink unreachable
// - ErrLocked: another run already holds the directory lock
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrLocked      = errors.New("locked")
)
