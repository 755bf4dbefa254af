package server

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the client identifier for a request. Sources are tried
// in order, first match wins:
//
//  1. CF-Connecting-IP (trusted proxy header), trimmed.
//  2. X-Forwarded-For, first comma-separated entry, trimmed.
//  3. The connection's remote address, without the port.
//  4. The empty string.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return ""
}
