package middleware

import (
	"context"
	"net/http"
	"strings"

	"itumy-key-api/internal/model"
	"itumy-key-api/internal/service"
	"itumy-key-api/pkg/apierror"
)

// AdminKey is the context key for the authenticated admin identity.
const AdminKey contextKey = "admin"

// NewAdminAuth creates the admin session middleware. The header must be
// exactly "Bearer <token>"; absence, malformed scheme, and verification
// failure all yield the same 401 class.
func NewAdminAuth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, apierror.Unauthorized("Unauthorized"))
				return
			}

			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, apierror.Unauthorized("Invalid token format"))
				return
			}

			admin, err := sessions.Verify(parts[1])
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetAdminFromContext retrieves the authenticated admin from request context.
func GetAdminFromContext(ctx context.Context) *model.AdminClaims {
	if admin, ok := ctx.Value(AdminKey).(*model.AdminClaims); ok {
		return admin
	}
	return nil
}
