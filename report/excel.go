/*
Package report renders stored requests into export formats.

PURPOSE:
  Pure, read-only projections of the request store - nothing in here feeds
  back into the workflow.

  - excel.go:    xlsx workbook, one row per request, start date descending
  - calendar.go: iCalendar feed, one all-day event per request

SEE ALSO:
  - api/handlers.go: Streams both exports over HTTP
*/
package report

import (
	"context"
	"fmt"

	"github.com/warp/vacation-tracker/vacation"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Vacations"

// Excel exports all requests as an xlsx workbook.
type Excel struct {
	Requests  vacation.RequestStore
	Employees vacation.EmployeeStore
}

// Export builds the workbook. Rows come back in the store's order: start
// date descending.
func (e *Excel) Export(ctx context.Context) (*excelize.File, error) {
	requests, err := e.Requests.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	names, err := employeeNames(ctx, e.Employees)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	header := []any{"Employee", "Start Date", "End Date", "Days", "State"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, req := range requests {
		name := names[req.EmployeeID]
		if name == "" {
			name = req.EmployeeID
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{name, req.Start.String(), req.End.String(), req.Days, string(req.State)}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "E", 16); err != nil {
		return nil, err
	}
	return f, nil
}

func employeeNames(ctx context.Context, employees vacation.EmployeeStore) (map[string]string, error) {
	all, err := employees.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[string]string, len(all))
	for _, emp := range all {
		names[emp.ID] = emp.Name
	}
	return names, nil
}
