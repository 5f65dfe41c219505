/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/auth/*       Login, password management (public)
  /api/requests/*   Request lifecycle (authenticated)
  /api/admin/*      Approver-only operations
  /api/export/*     xlsx and iCalendar projections

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Identity and role middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured. allowedOrigins
// feeds CORS; empty means localhost dev defaults.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/password", h.SetPassword)
			r.Post("/recover", h.Recover)
		})

		// Everything else needs a session
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/employees", h.ListEmployees)
			r.Get("/employees/{id}/balance", h.GetBalance)

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", h.ListRequests)
				r.Post("/", h.SubmitRequest)
				r.Delete("/{id}", h.CancelRequest)

				r.Group(func(r chi.Router) {
					r.Use(requireApprover)
					r.Post("/{id}/approve", h.ApproveRequest)
					r.Post("/{id}/reject", h.RejectRequest)
					r.Post("/{id}/revert", h.RevertRequest)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireApprover)
				r.Delete("/requests/{id}", h.DeleteRequest)
				r.Put("/balances/{id}/assigned", h.SetAssigned)
				r.Post("/balances/{id}/reset", h.ResetUsed)
			})

			r.Get("/export/xlsx", h.ExportExcel)
			r.Get("/export/calendar.ics", h.ExportCalendar)
		})
	})

	return r
}
