package middleware

import (
	"context"
	"net/http"
)

// Role is a display-mode toggle, not a security boundary: it selects
// which dashboard the frontend renders and is echoed back in list
// responses. Nothing in the core is gated by it.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

const roleKey contextKey = "role"

// RoleFromQuery reads the ?role= toggle into the request context,
// defaulting to agent.
func RoleFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := RoleAgent
		if r.URL.Query().Get("role") == string(RoleAdmin) {
			role = RoleAdmin
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleKey, role)))
	})
}

// GetRole returns the display role for the request
func GetRole(ctx context.Context) Role {
	if role, ok := ctx.Value(roleKey).(Role); ok {
		return role
	}
	return RoleAgent
}
