package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type contextKey string

const callerKey contextKey = "caller"

// SetCaller returns a context carrying the authenticated caller. Used by auth middleware.
func SetCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller set by Authenticate. Anonymous requests yield the zero Caller.
func CallerFromContext(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(callerKey).(domain.Caller)
	return caller
}

// Authenticate returns a wrapper that resolves the Bearer token, if any, into a domain.Caller.
// Requests without an Authorization header pass through as anonymous; a header that is
// malformed or carries an invalid token is rejected with 401.
func Authenticate(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next(w, r)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			caller, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetCaller(r.Context(), caller)))
		}
	}
}

// RequireAuth is Authenticate plus a 401 for anonymous requests.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	authenticate := Authenticate(verifier, logger)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return authenticate(func(w http.ResponseWriter, r *http.Request) {
			if !CallerFromContext(r.Context()).Authenticated() {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			next(w, r)
		})
	}
}
