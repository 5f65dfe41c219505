/*
workflow.go - The request state machine

PURPOSE:
  Orchestrates the lifecycle of vacation requests and keeps the balance
  ledger in step with it. Every transition is a single atomic step from the
  caller's point of view: the state change and the ledger movement commit
  together or not at all.

STATE MACHINE:

           submit                approve
    (none) ──────▶ Pending ───────────────▶ Approved
                     │  ▲                      │
              reject │  └──────────────────────┘
                     ▼        revertToPending
                  Rejected

  Delete is a side channel out of any state (with a ledger debit when the
  request was approved). Cancel removes an owned Pending request.

TRANSITIONS AND LEDGER EFFECTS:
  submit   -> Pending    no ledger effect (balance is only checked)
  approve  -> Approved   Credit(days); re-checks remaining first
  reject   -> Rejected   no ledger effect; reason is mandatory
  revert   -> Pending    Debit(days), floored at zero
  delete   -> (removed)  Debit(days) iff it was Approved
  cancel   -> (removed)  no ledger effect (nothing was credited)

  Re-invoking approve on an Approved request is NOT a no-op: the Pending
  precondition fails and the caller gets InvalidTransitionError. The ledger
  reflects exactly one credit.

CONCURRENCY:
  Mutations are serialized per employee with a keyed mutex, closing the
  read-check-write race between two submissions (or an approve racing a
  drifting balance). Stores stay internally thread-safe on top of that.

NOTIFICATIONS:
  submit  -> every approver        ("new request")
  approve -> the requester         ("approved")
  reject  -> the requester         ("rejected")
  delete  -> the requester         ("deleted", with reason)
  revert and cancel emit nothing. Notifier failures are logged and
  swallowed; the mutation has already committed.

SEE ALSO:
  - checker.go: Validation invoked by Submit and Approve
  - ledger.go:  Credit/Debit called here and nowhere else
*/
package vacation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDeleteReason is stored and notified when an approver deletes a
// request without giving a reason.
const DefaultDeleteReason = "removed by approver"

// Workflow drives request transitions. Construct with NewWorkflow.
type Workflow struct {
	store    Store
	ledger   *Ledger
	checker  *Checker
	notifier Notifier
	log      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWorkflow(store Store, notifier Notifier, log *zap.Logger) *Workflow {
	ledger := NewLedger(store)
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		store:    store,
		ledger:   ledger,
		checker:  NewChecker(store, ledger),
		notifier: notifier,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Ledger exposes the workflow's ledger for admin operations and balance
// reads. Admin mutations also go through Lock to stay serialized.
func (w *Workflow) Ledger() *Ledger { return w.ledger }

// Checker exposes the validator for pre-flight checks (e.g. form feedback).
func (w *Workflow) Checker() *Checker { return w.checker }

// employeeLock returns the mutex serializing mutations for one employee.
func (w *Workflow) employeeLock(employeeID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[employeeID] = l
	}
	return l
}

// Lock runs fn while holding the employee's mutation lock. Admin handlers
// use this for SetAssigned/ResetUsed so they cannot interleave with an
// in-flight approval.
func (w *Workflow) Lock(employeeID string, fn func() error) error {
	l := w.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit validates [start, end] for the actor and creates a Pending request.
// All approvers are notified.
func (w *Workflow) Submit(ctx context.Context, actor Actor, start, end Date, comment string) (*Request, error) {
	emp, err := w.getEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}

	l := w.employeeLock(emp.ID)
	l.Lock()
	defer l.Unlock()

	if err := w.checker.Validate(ctx, emp.ID, start, end); err != nil {
		return nil, err
	}

	now := time.Now()
	req := Request{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		Start:      start,
		End:        end,
		Days:       InclusiveDays(start, end),
		Comment:    comment,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := w.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	w.notifyApprovers(ctx, *emp, req)
	return &req, nil
}

// =============================================================================
// APPROVE
// =============================================================================

// Approve moves a Pending request to Approved and credits the ledger by the
// request's day count. The remaining balance is re-checked first: it may
// have drifted since submission. note becomes the resolution comment,
// falling back to the requester's original comment when empty.
func (w *Workflow) Approve(ctx context.Context, actor Actor, requestID, note string) (*Request, error) {
	req, err := w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	l := w.employeeLock(req.EmployeeID)
	l.Lock()
	defer l.Unlock()

	// Re-read under the lock; the first read only located the employee.
	req, err = w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.State != StatePending {
		return nil, &InvalidTransitionError{RequestID: req.ID, From: req.State, Op: "approve"}
	}
	if err := w.checker.CheckBalance(ctx, req.EmployeeID, req.Days); err != nil {
		return nil, err
	}

	prev := *req
	req.State = StateApproved
	req.Resolution = note
	if req.Resolution == "" {
		req.Resolution = req.Comment
	}
	req.UpdatedAt = time.Now()

	if err := w.store.SaveRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("failed to save approval: %w", err)
	}
	if err := w.ledger.Credit(ctx, req.EmployeeID, req.Days); err != nil {
		// Roll the state back so approval stays a single atomic step.
		if rbErr := w.store.SaveRequest(ctx, prev); rbErr != nil {
			w.log.Error("approval rollback failed",
				zap.String("request_id", req.ID), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	w.notifyRequester(ctx, req.EmployeeID, "Vacation approved",
		fmt.Sprintf("Your request from %s to %s has been approved.", req.Start, req.End))
	return req, nil
}

// =============================================================================
// REJECT
// =============================================================================

// Reject moves a Pending request to Rejected. reason is mandatory and is
// stored as the resolution comment. No ledger effect.
func (w *Workflow) Reject(ctx context.Context, actor Actor, requestID, reason string) (*Request, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	req, err := w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	l := w.employeeLock(req.EmployeeID)
	l.Lock()
	defer l.Unlock()

	req, err = w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.State != StatePending {
		return nil, &InvalidTransitionError{RequestID: req.ID, From: req.State, Op: "reject"}
	}

	req.State = StateRejected
	req.Resolution = reason
	req.UpdatedAt = time.Now()
	if err := w.store.SaveRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("failed to save rejection: %w", err)
	}

	w.notifyRequester(ctx, req.EmployeeID, "Vacation rejected",
		fmt.Sprintf("Your request from %s to %s has been rejected.\nReason: %s", req.Start, req.End, reason))
	return req, nil
}

// =============================================================================
// REVERT
// =============================================================================

// RevertToPending moves an Approved request back to Pending and debits the
// ledger by the request's day count (floored at zero). The stored resolution
// note is kept for the next decision. No notification.
func (w *Workflow) RevertToPending(ctx context.Context, actor Actor, requestID string) (*Request, error) {
	req, err := w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	l := w.employeeLock(req.EmployeeID)
	l.Lock()
	defer l.Unlock()

	req, err = w.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.State != StateApproved {
		return nil, &InvalidTransitionError{RequestID: req.ID, From: req.State, Op: "revert"}
	}

	prev := *req
	req.State = StatePending
	req.UpdatedAt = time.Now()

	if err := w.store.SaveRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("failed to save revert: %w", err)
	}
	if err := w.ledger.Debit(ctx, req.EmployeeID, req.Days); err != nil {
		if rbErr := w.store.SaveRequest(ctx, prev); rbErr != nil {
			w.log.Error("revert rollback failed",
				zap.String("request_id", req.ID), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}
	return req, nil
}

// =============================================================================
// DELETE (approver side channel)
// =============================================================================

// Delete removes a request permanently, from any state. When the request
// was Approved the ledger is debited so the days return to the employee;
// a failed debit restores the record. The requester is notified with the
// reason (or a default).
func (w *Workflow) Delete(ctx context.Context, actor Actor, requestID, reason string) error {
	req, err := w.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	l := w.employeeLock(req.EmployeeID)
	l.Lock()
	defer l.Unlock()

	req, err = w.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if err := w.store.DeleteRequest(ctx, req.ID); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if req.State == StateApproved {
		if err := w.ledger.Debit(ctx, req.EmployeeID, req.Days); err != nil {
			// Restore the record so deletion stays a single atomic step.
			if rbErr := w.store.SaveRequest(ctx, *req); rbErr != nil {
				w.log.Error("delete rollback failed",
					zap.String("request_id", req.ID), zap.Error(rbErr))
			}
			return fmt.Errorf("failed to debit balance: %w", err)
		}
	}

	if reason == "" {
		reason = DefaultDeleteReason
	}
	w.notifyRequester(ctx, req.EmployeeID, "Vacation request deleted",
		fmt.Sprintf("Your record from %s to %s has been deleted.\nReason: %s", req.Start, req.End, reason))
	return nil
}

// =============================================================================
// CANCEL (requester side channel)
// =============================================================================

// Cancel removes the actor's own Pending request. Nothing was credited, so
// there is no ledger effect, and no notification goes out.
func (w *Workflow) Cancel(ctx context.Context, actor Actor, requestID string) error {
	req, err := w.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	l := w.employeeLock(req.EmployeeID)
	l.Lock()
	defer l.Unlock()

	req, err = w.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.EmployeeID != actor.EmployeeID {
		return ErrNotOwner
	}
	if req.State != StatePending {
		return &InvalidTransitionError{RequestID: req.ID, From: req.State, Op: "cancel"}
	}

	if err := w.store.DeleteRequest(ctx, req.ID); err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	return nil
}

// =============================================================================
// LOOKUPS AND NOTIFICATIONS
// =============================================================================

func (w *Workflow) getRequest(ctx context.Context, id string) (*Request, error) {
	req, err := w.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return req, nil
}

func (w *Workflow) getEmployee(ctx context.Context, id string) (*Employee, error) {
	emp, err := w.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return emp, nil
}

func (w *Workflow) notifyApprovers(ctx context.Context, requester Employee, req Request) {
	if w.notifier == nil {
		return
	}
	approvers, err := w.store.ListApprovers(ctx)
	if err != nil {
		w.log.Warn("failed to list approvers for notification", zap.Error(err))
		return
	}
	comment := req.Comment
	if comment == "" {
		comment = "-"
	}
	body := fmt.Sprintf(
		"%s has submitted a vacation request:\n- From: %s\n- To: %s\n- Days: %d\n- Comment: %s\n\nPlease log in to approve or reject it.",
		requester.Name, req.Start, req.End, req.Days, comment)
	for _, apr := range approvers {
		if err := w.notifier.Send(ctx, apr, "New vacation request", body); err != nil {
			w.log.Warn("notification failed",
				zap.String("recipient", apr.ID), zap.Error(err))
		}
	}
}

func (w *Workflow) notifyRequester(ctx context.Context, employeeID, subject, body string) {
	if w.notifier == nil {
		return
	}
	emp, err := w.store.GetEmployee(ctx, employeeID)
	if err != nil || emp == nil {
		w.log.Warn("failed to resolve notification recipient",
			zap.String("employee_id", employeeID), zap.Error(err))
		return
	}
	if err := w.notifier.Send(ctx, *emp, subject, body); err != nil {
		w.log.Warn("notification failed",
			zap.String("recipient", employeeID), zap.Error(err))
	}
}
