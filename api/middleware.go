package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/vacation-tracker/vacation"
)

type contextKey string

const actorKey contextKey = "actor"

// actorFrom returns the authenticated actor stored by requireAuth.
func actorFrom(r *http.Request) vacation.Actor {
	actor, _ := r.Context().Value(actorKey).(vacation.Actor)
	return actor
}

// requireAuth validates the bearer token and stores the Actor in the
// request context. The identity layer ends here; everything downstream
// trusts the Actor.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		actor, err := h.Auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireApprover gates the approval and admin routes.
func requireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r).IsApprover() {
			writeError(w, http.StatusForbidden, "Approver role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
