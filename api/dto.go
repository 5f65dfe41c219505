/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract. Dates cross the wire in ISO form (YYYY-MM-DD);
  display formatting is the client's concern.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers validate; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/vacation-tracker/vacation"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// SetPasswordRequest serves both flows: empty Current means first-time
// creation, otherwise a verified change.
type SetPasswordRequest struct {
	EmployeeID string `json:"employee_id"`
	Current    string `json:"current,omitempty"`
	Password   string `json:"password"`
}

type RecoverRequest struct {
	EmployeeID string `json:"employee_id"`
}

// =============================================================================
// EMPLOYEES & BALANCES
// =============================================================================

type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HireDate string `json:"hire_date"`
}

type BalanceDTO struct {
	EmployeeID      string  `json:"employee_id"`
	Assigned        float64 `json:"assigned"`
	Used            float64 `json:"used"`
	Remaining       float64 `json:"remaining"`
	LastAnniversary string  `json:"last_anniversary"`
	NextAnniversary string  `json:"next_anniversary"`
}

type SetAssignedRequest struct {
	Assigned float64 `json:"assigned"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type SubmitRequestDTO struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Comment string `json:"comment,omitempty"`
}

type ResolveRequestDTO struct {
	// Note is optional for approve, mandatory (as the reason) for reject
	// and meaningful for delete.
	Note string `json:"note,omitempty"`
}

type RequestDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Days       int    `json:"days"`
	Comment    string `json:"comment,omitempty"`
	State      string `json:"state"`
	Resolution string `json:"resolution,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toEmployeeDTO(emp vacation.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       emp.ID,
		Name:     emp.Name,
		Email:    emp.Email,
		Role:     string(emp.Role),
		HireDate: emp.HireDate.String(),
	}
}

func toBalanceDTO(sum vacation.BalanceSummary) BalanceDTO {
	return BalanceDTO{
		EmployeeID:      sum.EmployeeID,
		Assigned:        sum.Assigned.InexactFloat64(),
		Used:            sum.Used.InexactFloat64(),
		Remaining:       sum.Remaining.InexactFloat64(),
		LastAnniversary: sum.LastAnniversary.String(),
		NextAnniversary: sum.NextAnniversary.String(),
	}
}

func toRequestDTO(req vacation.Request) RequestDTO {
	return RequestDTO{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Start:      req.Start.String(),
		End:        req.End.String(),
		Days:       req.Days,
		Comment:    req.Comment,
		State:      string(req.State),
		Resolution: req.Resolution,
		CreatedAt:  req.CreatedAt.Format(time.RFC3339),
	}
}
