/*
checker.go - Overlap and validity checks for proposed date ranges

PURPOSE:
  Gatekeeper for submissions. A proposed range must be well-formed, fit the
  employee's remaining balance, and not overlap any of their pending or
  approved requests. The workflow calls Validate before creating a request
  and re-checks the balance half again at approval time (the balance may
  have drifted while the request sat pending).

CHECK ORDER:
  1. InvalidRange:         end < start
  2. InsufficientBalance:  dayCount > assigned - used, read at call time
  3. Conflict:             inclusive overlap with an active request

  Two ranges [a,b] and [c,d] overlap iff a <= d AND c <= b. Adjacent ranges
  (end1 = start2 - 1) do not conflict. Rejected and deleted requests never
  count.

RACES:
  The balance read is not locked here; Workflow serializes per employee so
  the read-check-write sequence is atomic for a given employee.

SEE ALSO:
  - types.go: Overlaps and InclusiveDays
  - workflow.go: Caller, plus the approval-time balance re-check
*/
package vacation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Checker validates proposed vacation ranges against the store.
type Checker struct {
	requests RequestStore
	ledger   *Ledger
}

func NewChecker(requests RequestStore, ledger *Ledger) *Checker {
	return &Checker{requests: requests, ledger: ledger}
}

// Validate returns nil when [start, end] can be submitted for the employee,
// or exactly one of ErrInvalidRange, ErrInsufficientBalance (structured),
// ErrConflict (structured).
func (c *Checker) Validate(ctx context.Context, employeeID string, start, end Date) error {
	if end.Before(start) {
		return ErrInvalidRange
	}
	days := InclusiveDays(start, end)

	sum, err := c.ledger.Balance(ctx, employeeID)
	if err != nil {
		return err
	}
	if remainingShort(sum, days) {
		return &InsufficientBalanceError{
			EmployeeID: employeeID,
			Remaining:  sum.Remaining,
			Requested:  days,
		}
	}

	active, err := c.requests.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	for _, existing := range active {
		if Overlaps(start, end, existing.Start, existing.End) {
			return &ConflictError{
				EmployeeID: employeeID,
				RequestID:  existing.ID,
				Start:      existing.Start,
				End:        existing.End,
			}
		}
	}
	return nil
}

// CheckBalance re-validates that days still fit the employee's remaining
// balance. Used at approval time.
func (c *Checker) CheckBalance(ctx context.Context, employeeID string, days int) error {
	sum, err := c.ledger.Balance(ctx, employeeID)
	if err != nil {
		return err
	}
	if remainingShort(sum, days) {
		return &InsufficientBalanceError{
			EmployeeID: employeeID,
			Remaining:  sum.Remaining,
			Requested:  days,
		}
	}
	return nil
}

func remainingShort(sum *BalanceSummary, days int) bool {
	return decimal.NewFromInt(int64(days)).GreaterThan(sum.Remaining)
}
