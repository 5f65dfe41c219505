/*
Package vacation contains the core domain for the vacation-request tracker.

PURPOSE:
  This package holds everything the workflow needs to account for vacation
  days: employees, per-employee balance records, requests with their
  lifecycle states, and the calendar-date arithmetic used throughout.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar day (no time-of-day), the only time unit in the system
  - Employee: A named user with a role (approver or requester)
  - BalanceRecord: Assigned/used day counters plus hire-date bookkeeping
  - Request: A vacation request with inclusive start/end dates
  - Actor: The acting identity supplied by the session layer

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for day balances, never float64
  2. Inclusive ranges: a one-day vacation has start == end and Days == 1
  3. Fixed day counts: Days is computed once at submission and never
     recomputed (there is no edit operation, only delete-and-recreate)
  4. Explicit identity: every operation receives the Actor as a parameter;
     there is no ambient session state

SEE ALSO:
  - ledger.go: Balance mutations (credit, debit, admin overrides)
  - checker.go: Overlap and validity checks for proposed ranges
  - workflow.go: The Pending/Approved/Rejected state machine
*/
package vacation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAssignedDays is the entitlement granted when an employee is
// provisioned without an explicit assignment.
var DefaultAssignedDays = decimal.NewFromInt(30)

// =============================================================================
// DATE - Calendar day without time-of-day
// =============================================================================

// Date is a calendar day. All comparisons ignore time-of-day and location;
// the persisted form is ISO (YYYY-MM-DD).
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format(dateLayout) }

// InclusiveDays returns the day count of [start, end], counting both ends.
// A single-day range yields 1. Callers must validate start <= end first.
func InclusiveDays(start, end Date) int {
	return int(end.normalize().Sub(start.normalize()).Hours()/24) + 1
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && bStart.BeforeOrEqual(aEnd)
}

// LastAnniversary returns the most recent hire anniversary on or before
// today: today's year combined with the hire month/day, minus one year when
// that lands in the future.
func LastAnniversary(hire, today Date) Date {
	last := NewDate(today.Year(), hire.Month(), hire.Day())
	if last.After(today) {
		last = NewDate(today.Year()-1, hire.Month(), hire.Day())
	}
	return last
}

// NextAnniversary returns the anniversary following last, pinned to the hire
// month/day.
func NextAnniversary(last, hire Date) Date {
	return NewDate(last.Year()+1, hire.Month(), hire.Day())
}

// =============================================================================
// EMPLOYEE
// =============================================================================

type Role string

const (
	RoleApprover  Role = "approver"
	RoleRequester Role = "requester"
)

type Employee struct {
	ID       string
	Name     string
	Email    string
	Role     Role
	HireDate Date

	CreatedAt time.Time
}

// Actor is the acting identity for an operation, as supplied by the session
// layer. The core trusts it; authentication happens upstream.
type Actor struct {
	EmployeeID string
	Role       Role
}

func (a Actor) IsApprover() bool { return a.Role == RoleApprover }

// =============================================================================
// BALANCE RECORD - One per employee
// =============================================================================

// BalanceRecord tracks an employee's entitlement. used <= assigned is only
// enforced at approval time; admin edits may violate it transiently.
type BalanceRecord struct {
	EmployeeID      string
	Assigned        decimal.Decimal
	Used            decimal.Decimal
	HireDate        Date
	LastAnniversary Date
}

func (b BalanceRecord) Remaining() decimal.Decimal {
	return b.Assigned.Sub(b.Used)
}

// =============================================================================
// REQUEST - A vacation request with lifecycle state
// =============================================================================

type RequestState string

const (
	StatePending  RequestState = "pending"
	StateApproved RequestState = "approved"
	StateRejected RequestState = "rejected"
)

// Request is a submitted vacation range. Days is fixed at creation.
// Resolution holds the approver's note or rejection reason.
type Request struct {
	ID         string
	EmployeeID string
	Start      Date
	End        Date
	Days       int
	Comment    string
	State      RequestState
	Resolution string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the request still blocks its date range.
// Rejected requests never conflict with new submissions.
func (r Request) IsActive() bool {
	return r.State == StatePending || r.State == StateApproved
}

// =============================================================================
// NOTIFIER - External collaborator contract
// =============================================================================

// Notifier delivers workflow events to an employee. Delivery is best-effort:
// the workflow logs failures and never rolls back the preceding mutation.
type Notifier interface {
	Send(ctx context.Context, recipient Employee, subject, body string) error
}
