// Package quota implements the per-user reservation ledger: atomic
// check-and-reserve before generation work begins, best-effort refund on
// failure, and billing period rollover anchored on the signup day-of-month.
package quota

import (
	"fmt"
)

// QuotaExceededError is returned by Reserve when the requested count would
// push usage past the plan limit. It is terminal for the request: callers
// must not retry, and must surface it distinctly from generic failures.
type QuotaExceededError struct {
	Used      int // Usage at the time of the failed reservation
	Limit     int // Plan limit for the period
	Requested int // Count that was requested
	Remaining int // Limit minus used (never negative)
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: used %d of %d, requested %d, remaining %d",
		e.Used, e.Limit, e.Requested, e.Remaining)
}

// UnknownPlanError is returned when an account's tier has no entry in the
// plan catalog. The catalog lookup is mandatory; there is no fallback limit
// table, so a missing plan fails loudly instead of silently picking defaults.
type UnknownPlanError struct {
	Tier string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("quota: no plan configured for tier %q", e.Tier)
}
