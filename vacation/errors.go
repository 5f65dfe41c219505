/*
errors.go - Centralized error types for the vacation core

PURPOSE:
  All workflow failures in one place for consistency and discoverability.
  Every failure here is a rejected operation with an explanation; prior
  state is left untouched. There is no fatal error class in this core.

ERROR CATEGORIES:
  1. Validation errors - Bad ranges, overlaps, balance shortfalls
  2. Transition errors - State-machine precondition violations
  3. Lookup errors    - Unknown request or employee ids

  Notification failures are deliberately NOT represented here: they are
  logged by the workflow and never surfaced to the caller, since the state
  mutation has already committed by the time the notifier runs.

USAGE:
  Handlers branch on sentinels:

    if errors.Is(err, vacation.ErrConflict) {
        // 409
    }

  and unwrap structured errors when figures are needed:

    var ib *vacation.InsufficientBalanceError
    if errors.As(err, &ib) {
        log.Printf("short by %s days", ib.Shortfall())
    }

SEE ALSO:
  - checker.go: Produces the validation errors
  - workflow.go: Produces the transition and lookup errors
*/
package vacation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a proposed range has end before start.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInsufficientBalance is returned when a request's day count exceeds
	// the employee's remaining balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict is returned when a proposed range overlaps an existing
	// pending or approved request for the same employee.
	ErrConflict = errors.New("dates overlap an existing request")

	// ErrMissingReason is returned when rejecting without a reason.
	ErrMissingReason = errors.New("a reason is required to reject")

	// ErrInvalidTransition is returned when an operation's state precondition
	// does not hold (e.g. approving an already-approved request).
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotFound is returned for unknown request or employee ids.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when a requester tries to cancel a request
	// that belongs to someone else.
	ErrNotOwner = errors.New("request belongs to another employee")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports a balance shortfall with figures.
type InsufficientBalanceError struct {
	EmployeeID string
	Remaining  decimal.Decimal
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d days, %s remaining",
		e.Requested, e.Remaining.StringFixed(1))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return decimal.NewFromInt(int64(e.Requested)).Sub(e.Remaining)
}

// ConflictError reports which existing request the proposed range overlaps.
type ConflictError struct {
	EmployeeID string
	RequestID  string
	Start      Date
	End        Date
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dates overlap request %s (%s to %s)", e.RequestID, e.Start, e.End)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InvalidTransitionError reports the state that blocked an operation.
type InvalidTransitionError struct {
	RequestID string
	From      RequestState
	Op        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in state %q", e.Op, e.RequestID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrMissingReason) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotOwner)
}
