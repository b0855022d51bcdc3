package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "hadir/pkg/domain"
	"hadir/pkg/requestcontext"
)

// JWTClaims represents the claims the auth middleware needs from a token.
type JWTClaims struct {
	UserID id.UserID
	Role   string
}

// JWTValidator validates bearer tokens. The auth service implements it.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and exposes the
// authenticated user through request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				unauthorized(w)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree on the authenticated role. RequireAuth must run
// first.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[requestcontext.Role(r.Context())] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
