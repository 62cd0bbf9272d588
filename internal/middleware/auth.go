package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/wasteline/fleet_backendl/config"
	"github.com/wasteline/fleet_backendl/internal/pkg/response"
)

// AddIdentityToContext извлекает driver_id и role из JWT и кладёт в контекст.
// Requests without a token pass through untouched; the role guards decide
// what requires one.
func AddIdentityToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims := token.PrivateClaims()
			ctx := r.Context()
			if id, ok := claims["driver_id"].(string); ok && id != "" {
				ctx = context.WithValue(ctx, config.DriverIDKey, id)
			}
			if role, ok := claims["role"].(string); ok && role != "" {
				ctx = context.WithValue(ctx, config.RoleKey, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DriverIDFromContext returns the authenticated caller's driver id.
func DriverIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(config.DriverIDKey).(string)
	return id, ok && id != ""
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(config.RoleKey).(string)
	return role, ok && role != ""
}

// DriverOnly пропускает только токены с ролью "driver".
func DriverOnly() func(http.Handler) http.Handler {
	return requireRole("driver")
}

// AdminOnly пропускает только токены с ролью "admin".
func AdminOnly() func(http.Handler) http.Handler {
	return requireRole("admin")
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if got, ok := claims["role"].(string); !ok || got != role {
				response.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
