// Package precheck gates a run on its fatal startup conditions. Checks are
// injectable capabilities so the controller is testable without a privileged
// session or a live directory.
package precheck

import (
	"context"
	"fmt"
	"os"

	"phonefix/internal/directory"
)

// Check is one named startup condition. A non-nil error aborts the run before
// any query runs or log file exists.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Elevated verifies the process runs with administrative privileges.
// isElevated defaults to DefaultIsElevated when nil.
func Elevated(isElevated func() bool) Check {
	if isElevated == nil {
		isElevated = DefaultIsElevated
	}
	return Check{
		Name: "elevated privileges",
		Run: func(context.Context) error {
			if !isElevated() {
				return fmt.Errorf("process is not running elevated")
			}
			return nil
		},
	}
}

// DefaultIsElevated reports whether the process runs as root.
func DefaultIsElevated() bool {
	return os.Geteuid() == 0
}

// GatewayReachable probes the directory connection.
func GatewayReachable(gw directory.Gateway) Check {
	return Check{
		Name: "directory reachable",
		Run:  gw.Ping,
	}
}

// All runs every check in order and returns the first failure, wrapped with
// the check's name.
func All(ctx context.Context, checks ...Check) error {
	for _, c := range checks {
		if err := c.Run(ctx); err != nil {
			return fmt.Errorf("precondition %q: %w", c.Name, err)
		}
	}
	return nil
}
