package report

import (
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/warp/vacation-tracker/vacation"
)

// Calendar exports requests as an iCalendar feed so the team calendar can
// subscribe to it.
type Calendar struct {
	Requests  vacation.RequestStore
	Employees vacation.EmployeeStore
}

// Feed serializes one all-day VEVENT per request. DTEND is exclusive per
// RFC 5545, so an inclusive range [start, end] becomes [start, end+1).
func (c *Calendar) Feed(ctx context.Context) (string, error) {
	requests, err := c.Requests.ListRequests(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list requests: %w", err)
	}
	names, err := employeeNames(ctx, c.Employees)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//vacation-tracker//EN")

	for _, req := range requests {
		name := names[req.EmployeeID]
		if name == "" {
			name = req.EmployeeID
		}

		event := cal.AddEvent(req.ID)
		event.SetCreatedTime(req.CreatedAt)
		event.SetDtStampTime(req.UpdatedAt)
		event.SetAllDayStartAt(req.Start.Time)
		event.SetAllDayEndAt(req.End.AddDays(1).Time)
		event.SetSummary(fmt.Sprintf("%s (%s)", name, req.State))
		if req.Comment != "" {
			event.SetDescription(req.Comment)
		}
	}

	return cal.Serialize(), nil
}
