package router

import (
	"net/http"
	"strings"
)

const metricsTokenQuery = "token"

// requireToken guards operational endpoints with a shared bearer token.
// When expected is empty, the middleware is a no-op.
func requireToken(expected string) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if token == "" {
				token = strings.TrimSpace(r.URL.Query().Get(metricsTokenQuery))
			}
			if token == "" || token != expected {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
