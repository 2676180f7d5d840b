package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// AuthConfig configures the access guard.
type AuthConfig struct {
	// APIKey is the shared secret. Empty disables the guard entirely;
	// every request is allowed (documented development-mode behavior).
	APIKey string
	// PublicPaths are path prefixes served without the header check.
	PublicPaths []string
}

// Auth gates requests on the x-api-key header. The comparison is exact and
// case-sensitive, done in constant time. A deny never reaches the handler,
// so no upstream call is attempted for rejected requests.
func Auth(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.APIKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			for _, path := range config.PublicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			header := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(header), []byte(config.APIKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"detail": "Invalid or missing API key.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
