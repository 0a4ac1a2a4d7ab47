// Package ipinfo resolves best-effort client IPs for the audit trail.
//
// Resolution is never load-bearing: an unresolvable IP yields an empty string
// and verification proceeds without it.
package ipinfo

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest extracts the client IP from proxy headers, falling back to the
// connection's remote address. Returns empty string when nothing parses.
func FromRequest(r *http.Request) string {
	// X-Forwarded-For carries the original client first; later hops append.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if xr := r.Header.Get("X-Real-Ip"); xr != "" {
		if ip := parseIP(xr); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
