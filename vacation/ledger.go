/*
ledger.go - Per-employee balance accounting

PURPOSE:
  The Ledger owns every mutation of a BalanceRecord. The workflow credits
  used days on approval and debits them on reversal or deletion; approvers
  override the assigned total or reset usage from the admin panel.

INVARIANTS:
  - Debit floors used at zero. Reversing more than was ever credited cannot
    drive the counter negative.
  - Credit has no upper bound here: the balance check (dayCount <= remaining)
    belongs to the caller, at validation or approval time.
  - SetAssigned performs no validation against historical usage. Admin edits
    may leave used > assigned transiently; approval re-checks.
  - ResetUsed zeroes the counter. This discards usage history on purpose -
    it is the escape hatch for year-end resets.

EXAMPLE:
  ledger := vacation.NewLedger(store)
  if err := ledger.Credit(ctx, "emp-1", 5); err != nil { ... }
  sum, _ := ledger.Balance(ctx, "emp-1")
  fmt.Println(sum.Remaining) // assigned - used

SEE ALSO:
  - types.go: BalanceRecord and anniversary arithmetic
  - workflow.go: The only caller of Credit/Debit
*/
package vacation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger applies credits and debits to employee balance records.
type Ledger struct {
	balances BalanceStore
}

func NewLedger(balances BalanceStore) *Ledger {
	return &Ledger{balances: balances}
}

// BalanceSummary is the caller-facing view of one employee's balance.
type BalanceSummary struct {
	EmployeeID      string
	Assigned        decimal.Decimal
	Used            decimal.Decimal
	Remaining       decimal.Decimal
	LastAnniversary Date
	NextAnniversary Date
}

// Balance returns the current figures for an employee. The anniversary
// fields are informational only; nothing accrues on them.
func (l *Ledger) Balance(ctx context.Context, employeeID string) (*BalanceSummary, error) {
	rec, err := l.get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	last := LastAnniversary(rec.HireDate, Today())
	return &BalanceSummary{
		EmployeeID:      rec.EmployeeID,
		Assigned:        rec.Assigned,
		Used:            rec.Used,
		Remaining:       rec.Remaining(),
		LastAnniversary: last,
		NextAnniversary: NextAnniversary(last, rec.HireDate),
	}, nil
}

// Credit increases used by days. Called when a request is approved.
func (l *Ledger) Credit(ctx context.Context, employeeID string, days int) error {
	rec, err := l.get(ctx, employeeID)
	if err != nil {
		return err
	}
	rec.Used = rec.Used.Add(decimal.NewFromInt(int64(days)))
	return l.balances.SaveBalance(ctx, *rec)
}

// Debit decreases used by days, floored at zero. Called when an approved
// request is reverted or deleted.
func (l *Ledger) Debit(ctx context.Context, employeeID string, days int) error {
	rec, err := l.get(ctx, employeeID)
	if err != nil {
		return err
	}
	rec.Used = rec.Used.Sub(decimal.NewFromInt(int64(days)))
	if rec.Used.IsNegative() {
		rec.Used = decimal.Zero
	}
	return l.balances.SaveBalance(ctx, *rec)
}

// SetAssigned overrides the employee's entitlement. Admin action, no
// validation against usage.
func (l *Ledger) SetAssigned(ctx context.Context, employeeID string, value decimal.Decimal) error {
	rec, err := l.get(ctx, employeeID)
	if err != nil {
		return err
	}
	rec.Assigned = value
	return l.balances.SaveBalance(ctx, *rec)
}

// ResetUsed zeroes the used counter. Admin action, irreversible.
func (l *Ledger) ResetUsed(ctx context.Context, employeeID string) error {
	rec, err := l.get(ctx, employeeID)
	if err != nil {
		return err
	}
	rec.Used = decimal.Zero
	return l.balances.SaveBalance(ctx, *rec)
}

// Provision creates the balance record at employee provisioning time.
// Existing records are left untouched, so re-running a seed is safe.
func (l *Ledger) Provision(ctx context.Context, emp Employee, assigned decimal.Decimal) error {
	existing, err := l.balances.GetBalance(ctx, emp.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return l.balances.SaveBalance(ctx, BalanceRecord{
		EmployeeID:      emp.ID,
		Assigned:        assigned,
		Used:            decimal.Zero,
		HireDate:        emp.HireDate,
		LastAnniversary: LastAnniversary(emp.HireDate, Today()),
	})
}

func (l *Ledger) get(ctx context.Context, employeeID string) (*BalanceRecord, error) {
	rec, err := l.balances.GetBalance(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("balance for employee %s: %w", employeeID, ErrNotFound)
	}
	return rec, nil
}
