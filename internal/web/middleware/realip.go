package middleware

// realip.go rewrites RemoteAddr from proxy headers, but only for requests
// that arrive from a configured proxy network. Headers from any other
// source are ignored, so a direct client cannot spoof its address.

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP returns middleware that sets r.RemoteAddr to the client IP
// reported by X-Real-IP, or failing that the first X-Forwarded-For hop, when
// the connection comes from one of the trusted networks. Entries may be
// CIDRs or single IPs; unparsable entries are logged and skipped. With no
// trusted networks the middleware leaves every request untouched.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrustedNets(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peerIsTrusted(r.RemoteAddr, trusted) {
				if ip := clientIPFromHeaders(r.Header); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrustedNets parses proxy network entries once at construction. A bare
// IP is widened to a /32 or /128.
func parseTrustedNets(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if _, network, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, network)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			mask := net.CIDRMask(128, 128)
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: mask})
			continue
		}
		slog.Warn("skipping unparsable trusted proxy entry", "entry", entry)
	}
	return nets
}

// clientIPFromHeaders picks the client IP a trusted proxy reported.
// X-Real-IP wins over X-Forwarded-For; only the first forwarded hop is the
// original client, later hops name intermediate proxies. Returns nil when
// neither header carries a valid address.
func clientIPFromHeaders(h http.Header) net.IP {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		return net.ParseIP(rip)
	}

	xff := h.Get("X-Forwarded-For")
	if xff == "" {
		return nil
	}
	first := xff
	if idx := strings.Index(xff, ","); idx > 0 {
		first = xff[:idx]
	}
	return net.ParseIP(strings.TrimSpace(first))
}

// peerIsTrusted reports whether the connection's source address falls inside
// one of the trusted networks. RemoteAddr may be host:port or a bare IP.
func peerIsTrusted(remoteAddr string, trusted []*net.IPNet) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
