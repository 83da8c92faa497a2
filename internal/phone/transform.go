// Package phone holds the number rewrite applied to every candidate account.
// It is deliberately narrow: numbers are assumed to be UK national format with
// a leading zero, because the directory query only returns accounts matching
// that filter. It is not a general phone number parser.
package phone

import (
	"fmt"
	"strings"
)

// minLength is the exclusive lower bound on eligible numbers. A raw value of
// exactly this length is rejected; it must be longer to qualify.
const minLength = 8

// countryPrefix replaces the leading trunk zero.
const countryPrefix = "+44"

// Result is the outcome of one transform. Exactly one of NewNumber or Reason
// is populated: NewNumber when Accepted is true, Reason otherwise.
type Result struct {
	Accepted  bool
	NewNumber string
	Reason    string
}

// Transform rewrites a raw directory attribute value into UK international
// format. The first character is dropped without inspection; callers are
// expected to have pre-filtered for a leading zero, matching the gateway
// query filter. Spaces are stripped from the rewritten value.
//
// Transform never panics; a single malformed record must never abort the
// batch, so internal faults surface as a rejection instead.
func Transform(raw string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if len(raw) <= minLength {
		return Result{Reason: "too short: must exceed 8 characters to qualify for change"}
	}

	candidate := countryPrefix + raw[1:]
	candidate = strings.ReplaceAll(candidate, " ", "")

	return Result{Accepted: true, NewNumber: candidate}
}
