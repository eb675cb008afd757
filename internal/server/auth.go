package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// TokenHeader carries the shared secret for mutating requests.
const TokenHeader = "X-Milepost-Token"

// RequireToken gates a route behind a shared-secret header. An empty
// configured token disables the check: the server binds to localhost by
// default and the token is an opt-in hardening layer.
func RequireToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			supplied := r.Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				logger.Warn("Rejected request with bad token", "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
