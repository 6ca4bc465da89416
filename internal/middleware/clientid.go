package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentifier derives the rate-limit partition key for a request: the
// first forwarded hop, else the direct peer address, else "unknown". The key
// is not authenticated; clients behind one proxy share a bucket.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
