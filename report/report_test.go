package report_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-tracker/report"
	"github.com/warp/vacation-tracker/store/memory"
	"github.com/warp/vacation-tracker/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, vacation.Employee{
		ID: "emp-1", Name: "Eva Marin", Email: "eva@example.com",
		Role: vacation.RoleRequester, HireDate: vacation.NewDate(2016, time.October, 1)}))

	requests := []vacation.Request{
		{
			ID:         "req-1",
			EmployeeID: "emp-1",
			Start:      vacation.NewDate(2025, time.June, 1),
			End:        vacation.NewDate(2025, time.June, 5),
			Days:       5,
			Comment:    "beach week",
			State:      vacation.StateApproved,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		},
		{
			ID:         "req-2",
			EmployeeID: "emp-2", // no employee record on purpose
			Start:      vacation.NewDate(2025, time.August, 10),
			End:        vacation.NewDate(2025, time.August, 12),
			Days:       3,
			State:      vacation.StatePending,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		},
	}
	for _, req := range requests {
		require.NoError(t, store.SaveRequest(ctx, req))
	}
	return store
}

// =============================================================================
// XLSX EXPORT
// =============================================================================

func TestExcel_Export(t *testing.T) {
	store := seededStore(t)
	exporter := &report.Excel{Requests: store, Employees: store}

	f, err := exporter.Export(context.Background())
	require.NoError(t, err)
	defer f.Close()

	// Header row.
	got, err := f.GetCellValue("Vacations", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Employee", got)
	got, _ = f.GetCellValue("Vacations", "E1")
	assert.Equal(t, "State", got)

	// Rows follow the store order: start date descending, so req-2 first.
	got, _ = f.GetCellValue("Vacations", "A2")
	assert.Equal(t, "emp-2", got, "unknown employees fall back to the id")
	got, _ = f.GetCellValue("Vacations", "A3")
	assert.Equal(t, "Eva Marin", got)
	got, _ = f.GetCellValue("Vacations", "B3")
	assert.Equal(t, "2025-06-01", got)
	got, _ = f.GetCellValue("Vacations", "D3")
	assert.Equal(t, "5", got)
	got, _ = f.GetCellValue("Vacations", "E3")
	assert.Equal(t, "approved", got)
}

func TestExcel_Export_Empty(t *testing.T) {
	store := memory.New()
	exporter := &report.Excel{Requests: store, Employees: store}

	f, err := exporter.Export(context.Background())
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Vacations", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Employee", got, "header present even with no requests")
}

// =============================================================================
// CALENDAR FEED
// =============================================================================

func TestCalendar_Feed(t *testing.T) {
	store := seededStore(t)
	calendar := &report.Calendar{Requests: store, Employees: store}

	feed, err := calendar.Feed(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(feed, "BEGIN:VEVENT"))
	assert.Contains(t, feed, "SUMMARY:Eva Marin (approved)")
	assert.Contains(t, feed, "DESCRIPTION:beach week")

	// Inclusive range June 1-5 renders as all-day start June 1, exclusive
	// end June 6.
	assert.Contains(t, feed, "DTSTART;VALUE=DATE:20250601")
	assert.Contains(t, feed, "DTEND;VALUE=DATE:20250606")
}

func TestCalendar_Feed_Empty(t *testing.T) {
	store := memory.New()
	calendar := &report.Calendar{Requests: store, Employees: store}

	feed, err := calendar.Feed(context.Background())
	require.NoError(t, err)
	assert.Contains(t, feed, "BEGIN:VCALENDAR")
	assert.NotContains(t, feed, "BEGIN:VEVENT")
}
