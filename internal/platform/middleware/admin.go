package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"pawport/pkg/requestcontext"
)

const adminTokenHeader = "X-Admin-Token"

// RequireAdminToken gates admin routes on a shared token. Only the
// bcrypt hash of the token is configured; an empty hash disables the
// admin surface entirely.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if tokenHash == "" {
				logger.WarnContext(ctx, "admin surface disabled, no token hash configured",
					"request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusForbidden, "admin access disabled")
				return
			}
			token := r.Header.Get(adminTokenHeader)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing admin token")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusUnauthorized, "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
