package http

import (
	"net/http"
	"strings"
)

// Content security policies. The API answers with JSON only, so nothing
// may load anything. The swagger UI is the one HTML surface and needs its
// inline scripts and styles.
const (
	apiCSP     = "default-src 'none'"
	swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// SecurityHeaders hardens every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := apiCSP
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			csp = swaggerCSP
		}
		h.Set("Content-Security-Policy", csp)

		next.ServeHTTP(w, r)
	})
}
