package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-tracker/store/sqlite"
	"github.com/warp/vacation-tracker/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) vacation.Date {
	return vacation.NewDate(y, m, d)
}

func saveRequest(t *testing.T, store *sqlite.Store, id, employeeID string, start, end vacation.Date, state vacation.RequestState) {
	t.Helper()
	err := store.SaveRequest(context.Background(), vacation.Request{
		ID:         id,
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
		Days:       vacation.InclusiveDays(start, end),
		State:      state,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	require.NoError(t, err)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestStore_Employee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := vacation.Employee{
		ID:       "emp-1",
		Name:     "Eva Marin",
		Email:    "eva@example.com",
		Role:     vacation.RoleRequester,
		HireDate: date(2016, time.October, 1),
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Eva Marin", got.Name)
	assert.Equal(t, vacation.RoleRequester, got.Role)
	assert.Equal(t, "2016-10-01", got.HireDate.String())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetEmployee_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetEmployee(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got, "missing rows come back as (nil, nil)")
}

func TestStore_SaveEmployee_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := vacation.Employee{ID: "emp-1", Name: "Eva", Email: "eva@example.com",
		Role: vacation.RoleRequester, HireDate: date(2016, time.October, 1)}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	emp.Name = "Eva Marin"
	emp.Role = vacation.RoleApprover
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Eva Marin", got.Name)
	assert.Equal(t, vacation.RoleApprover, got.Role)

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert, not duplicate")
}

func TestStore_ListApprovers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, vacation.Employee{
		ID: "emp-1", Name: "Eva", Email: "e@x.com",
		Role: vacation.RoleRequester, HireDate: date(2016, time.October, 1)}))
	require.NoError(t, store.SaveEmployee(ctx, vacation.Employee{
		ID: "apr-1", Name: "Luz", Email: "l@x.com",
		Role: vacation.RoleApprover, HireDate: date(1993, time.September, 16)}))

	approvers, err := store.ListApprovers(ctx)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, "apr-1", approvers[0].ID)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestStore_Balance_RoundTrip(t *testing.T) {
	// Fractional day counts must survive the TEXT round trip exactly.
	store := newTestStore(t)
	ctx := context.Background()

	rec := vacation.BalanceRecord{
		EmployeeID:      "emp-1",
		Assigned:        decimal.RequireFromString("30"),
		Used:            decimal.RequireFromString("12.5"),
		HireDate:        date(2016, time.October, 1),
		LastAnniversary: date(2024, time.October, 1),
	}
	require.NoError(t, store.SaveBalance(ctx, rec))

	got, err := store.GetBalance(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "12.5", got.Used.String())
	assert.True(t, got.Remaining().Equal(decimal.RequireFromString("17.5")))
	assert.Equal(t, "2024-10-01", got.LastAnniversary.String())
}

func TestStore_GetBalance_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetBalance(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SaveBalance_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := vacation.BalanceRecord{
		EmployeeID:      "emp-1",
		Assigned:        decimal.NewFromInt(30),
		Used:            decimal.Zero,
		HireDate:        date(2016, time.October, 1),
		LastAnniversary: date(2024, time.October, 1),
	}
	require.NoError(t, store.SaveBalance(ctx, rec))

	rec.Used = decimal.NewFromInt(5)
	require.NoError(t, store.SaveBalance(ctx, rec))

	all, err := store.ListBalances(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Used.Equal(decimal.NewFromInt(5)))
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestStore_Request_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := vacation.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Start:      date(2025, time.June, 1),
		End:        date(2025, time.June, 5),
		Days:       5,
		Comment:    "beach week",
		State:      vacation.StatePending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.SaveRequest(ctx, req))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-06-01", got.Start.String())
	assert.Equal(t, "2025-06-05", got.End.String())
	assert.Equal(t, 5, got.Days)
	assert.Equal(t, "beach week", got.Comment)
	assert.Equal(t, vacation.StatePending, got.State)
}

func TestStore_SaveRequest_UpdatesLifecycleFieldsOnly(t *testing.T) {
	// On conflict only state, resolution, and updated_at change. The range
	// is immutable once submitted.
	store := newTestStore(t)
	ctx := context.Background()
	saveRequest(t, store, "req-1", "emp-1",
		date(2025, time.June, 1), date(2025, time.June, 5), vacation.StatePending)

	update := vacation.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Start:      date(2025, time.July, 1), // must be ignored
		End:        date(2025, time.July, 9),
		Days:       9,
		State:      vacation.StateApproved,
		Resolution: "enjoy",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.SaveRequest(ctx, update))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, vacation.StateApproved, got.State)
	assert.Equal(t, "enjoy", got.Resolution)
	assert.Equal(t, "2025-06-01", got.Start.String(), "range untouched by upsert")
	assert.Equal(t, 5, got.Days)
}

func TestStore_DeleteRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveRequest(t, store, "req-1", "emp-1",
		date(2025, time.June, 1), date(2025, time.June, 5), vacation.StatePending)

	require.NoError(t, store.DeleteRequest(ctx, "req-1"))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ListRequests_NewestStartFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveRequest(t, store, "req-old", "emp-1",
		date(2025, time.March, 1), date(2025, time.March, 2), vacation.StatePending)
	saveRequest(t, store, "req-new", "emp-2",
		date(2025, time.August, 1), date(2025, time.August, 2), vacation.StatePending)

	all, err := store.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "req-new", all[0].ID)
	assert.Equal(t, "req-old", all[1].ID)
}

func TestStore_ListActiveByEmployee(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveRequest(t, store, "req-pending", "emp-1",
		date(2025, time.June, 1), date(2025, time.June, 2), vacation.StatePending)
	saveRequest(t, store, "req-approved", "emp-1",
		date(2025, time.July, 1), date(2025, time.July, 2), vacation.StateApproved)
	saveRequest(t, store, "req-rejected", "emp-1",
		date(2025, time.August, 1), date(2025, time.August, 2), vacation.StateRejected)
	saveRequest(t, store, "req-other", "emp-2",
		date(2025, time.June, 1), date(2025, time.June, 2), vacation.StatePending)

	active, err := store.ListActiveByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, req := range active {
		assert.Equal(t, "emp-1", req.EmployeeID)
		assert.True(t, req.IsActive())
	}
}

func TestStore_ListByState_OldestStartFirst(t *testing.T) {
	// The approver queue reads oldest first.
	store := newTestStore(t)
	ctx := context.Background()
	saveRequest(t, store, "req-new", "emp-1",
		date(2025, time.August, 1), date(2025, time.August, 2), vacation.StatePending)
	saveRequest(t, store, "req-old", "emp-2",
		date(2025, time.March, 1), date(2025, time.March, 2), vacation.StatePending)
	saveRequest(t, store, "req-done", "emp-1",
		date(2025, time.January, 1), date(2025, time.January, 2), vacation.StateApproved)

	pending, err := store.ListByState(ctx, vacation.StatePending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "req-old", pending[0].ID)
	assert.Equal(t, "req-new", pending[1].ID)
}
