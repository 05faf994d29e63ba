package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the caller's IP for rate limiting. chi's RealIP
// middleware rewrites RemoteAddr from forwarding headers upstream of this.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
