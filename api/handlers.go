/*
handlers.go - HTTP API handlers for the vacation tracker

PURPOSE:
  Exposes the workflow over REST. Handles HTTP request/response and JSON
  serialization, delegates everything else to the domain packages.

ENDPOINTS:
  Auth:
    POST   /api/auth/login        Password login -> JWT
    POST   /api/auth/password     First-time set or change
    POST   /api/auth/recover      Mail a temporary password

  Requests (authenticated):
    POST   /api/requests              Submit (actor from token)
    GET    /api/requests              List all, start date descending
                                      (?state=pending filters, oldest first)
    DELETE /api/requests/{id}         Cancel own pending request
    POST   /api/requests/{id}/approve (approver)
    POST   /api/requests/{id}/reject  (approver)
    POST   /api/requests/{id}/revert  (approver)

  Admin (approver):
    DELETE /api/admin/requests/{id}          Delete with reason
    PUT    /api/admin/balances/{id}/assigned SetAssigned
    POST   /api/admin/balances/{id}/reset    ResetUsed

  Read-only:
    GET /api/employees, /api/employees/{id}/balance
    GET /api/export/xlsx, /api/export/calendar.ics

ERROR HANDLING:
  - 400: malformed input, invalid range, missing reason
  - 401/403: identity and role failures (middleware)
  - 404: unknown request/employee
  - 409: overlap, insufficient balance, invalid transition
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/vacation-tracker/auth"
	"github.com/warp/vacation-tracker/report"
	"github.com/warp/vacation-tracker/vacation"
	"go.uber.org/zap"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workflow *vacation.Workflow
	Store    vacation.Store
	Auth     *auth.Service
	Excel    *report.Excel
	Calendar *report.Calendar
	Log      *zap.Logger
}

func NewHandler(workflow *vacation.Workflow, store vacation.Store, authSvc *auth.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Workflow: workflow,
		Store:    store,
		Auth:     authSvc,
		Excel:    &report.Excel{Requests: store, Employees: store},
		Calendar: &report.Calendar{Requests: store, Employees: store},
		Log:      log,
	}
}

// =============================================================================
// AUTH
// =============================================================================

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.EmployeeID, req.Password)
	switch {
	case errors.Is(err, auth.ErrPasswordNotSet):
		writeError(w, http.StatusConflict, "No password set yet; create one first", nil)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	actor, _ := h.Auth.ParseToken(token)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Role: string(actor.Role)})
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password must not be empty", nil)
		return
	}

	var err error
	if req.Current == "" {
		err = h.Auth.SetInitialPassword(r.Context(), req.EmployeeID, req.Password)
	} else {
		err = h.Auth.ChangePassword(r.Context(), req.EmployeeID, req.Current, req.Password)
	}
	switch {
	case errors.Is(err, auth.ErrPasswordAlreadySet):
		writeError(w, http.StatusConflict, "Password already set; use change instead", nil)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrPasswordNotSet):
		writeError(w, http.StatusUnauthorized, "Current password is wrong", nil)
	case errors.Is(err, vacation.ErrNotFound):
		writeError(w, http.StatusNotFound, "Employee not found", nil)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to set password", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Auth.Recover(r.Context(), req.EmployeeID); err != nil {
		if errors.Is(err, vacation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Recovery failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "temporary password sent"})
}

// =============================================================================
// EMPLOYEES & BALANCES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sum, err := h.Workflow.Ledger().Balance(r.Context(), id)
	if err != nil {
		if errors.Is(err, vacation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*sum))
}

// =============================================================================
// REQUESTS
// =============================================================================

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var dto SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := vacation.ParseDate(dto.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := vacation.ParseDate(dto.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	req, err := h.Workflow.Submit(r.Context(), actorFrom(r), start, end, dto.Comment)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*req))
}

// ListRequests returns all requests, start date descending. With
// ?state=pending|approved|rejected it returns only that state, oldest
// first - the approver works the queue top-down.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var requests []vacation.Request
	var err error

	switch state := vacation.RequestState(r.URL.Query().Get("state")); state {
	case "":
		requests, err = h.Store.ListRequests(r.Context())
	case vacation.StatePending, vacation.StateApproved, vacation.StateRejected:
		requests, err = h.Store.ListByState(r.Context(), state)
	default:
		writeError(w, http.StatusBadRequest, "Unknown state filter", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Workflow.Cancel(r.Context(), actorFrom(r), id); err != nil {
		if errors.Is(err, vacation.ErrNotOwner) {
			writeError(w, http.StatusForbidden, "Not your request", nil)
			return
		}
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto ResolveRequestDTO
	_ = json.NewDecoder(r.Body).Decode(&dto)

	req, err := h.Workflow.Approve(r.Context(), actorFrom(r), id, dto.Note)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto ResolveRequestDTO
	_ = json.NewDecoder(r.Body).Decode(&dto)

	req, err := h.Workflow.Reject(r.Context(), actorFrom(r), id, dto.Note)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

func (h *Handler) RevertRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := h.Workflow.RevertToPending(r.Context(), actorFrom(r), id)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// =============================================================================
// ADMIN
// =============================================================================

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto ResolveRequestDTO
	_ = json.NewDecoder(r.Body).Decode(&dto)

	if err := h.Workflow.Delete(r.Context(), actorFrom(r), id, dto.Note); err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SetAssigned(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto SetAssignedRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if dto.Assigned < 0 {
		writeError(w, http.StatusBadRequest, "Assigned days must not be negative", nil)
		return
	}

	err := h.Workflow.Lock(id, func() error {
		return h.Workflow.Ledger().SetAssigned(r.Context(), id, decimal.NewFromFloat(dto.Assigned))
	})
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ResetUsed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Workflow.Lock(id, func() error {
		return h.Workflow.Ledger().ResetUsed(r.Context(), id)
	})
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EXPORTS
// =============================================================================

func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	f, err := h.Excel.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vacations.xlsx"`)
	if err := f.Write(w); err != nil {
		h.Log.Warn("xlsx write aborted", zap.Error(err))
	}
}

func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	feed, err := h.Calendar.Feed(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vacations.ics"`)
	_, _ = w.Write([]byte(feed))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vacation.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, vacation.ErrInvalidRange), errors.Is(err, vacation.ErrMissingReason):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case vacation.IsClientError(err):
		// Overlap, balance shortfall, invalid transition: state conflicts.
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
