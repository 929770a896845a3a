package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/onyxandcode/onyx-site/internal/auth"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionVerifier reads and verifies the session carried by a request.
type SessionVerifier interface {
	FromRequest(r *http.Request) (*auth.Claims, error)
}

// RequireSession stops requests without a valid session before the wrapped
// handler runs. Browser navigations are redirected to the login page; API and
// JSON callers get 401.
func RequireSession(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.FromRequest(r)
			if err != nil {
				if isAPIRequest(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "session required"})
					return
				}
				http.Redirect(w, r, auth.LoginPath, http.StatusFound)
				return
			}
			ctx := WithSessionClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailAllowlist decides which signed-in emails may proceed.
type EmailAllowlist interface {
	Allows(email string) bool
}

// RequireAllowedEmail must run after RequireSession. Sessions whose email is
// not allowed get 403 and the wrapped handler never runs.
func RequireAllowedEmail(allowed EmailAllowlist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionClaimsFromContext(r.Context())
			if !ok || allowed == nil || !allowed.Allows(claims.Email) {
				if isAPIRequest(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "access denied"})
					return
				}
				http.Error(w, "access denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSessionClaims stores claims on ctx.
func WithSessionClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

// SessionClaimsFromContext returns the verified session claims if present.
func SessionClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
