// Package tenancy maps inbound hosts to tenants: hostname extraction, the
// dynamic allow-list, the tenant resolver and the gateway pipeline tying
// them to the schema router.
package tenancy

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/chalanpro/tenant-gateway/pkg/config"
)

// Normalize lowercases a host and strips whitespace and any port. An empty
// result means there was no host. Bracketed IPv6 literals keep their
// brackets; any other input is cut at the first ':'.
func Normalize(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			return host[:end+1]
		}
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSpace(host)
}

// HostSource carries the transport attributes a hostname can come from.
type HostSource struct {
	Host          string
	ForwardedHost string
	ServerAddr    string
	ServerPort    int
}

// ExtractHostname applies the precedence Host, then the first value of
// X-Forwarded-Host, then the server address. The server port is kept only
// when it is not a default port. The result is not normalized.
func ExtractHostname(src HostSource) string {
	if strings.TrimSpace(src.Host) != "" {
		return src.Host
	}
	if first, _, _ := strings.Cut(src.ForwardedHost, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if src.ServerAddr == "" {
		return ""
	}
	if src.ServerPort == 0 || src.ServerPort == 80 || src.ServerPort == 443 {
		if strings.Contains(src.ServerAddr, ":") {
			return "[" + src.ServerAddr + "]"
		}
		return src.ServerAddr
	}
	return net.JoinHostPort(src.ServerAddr, strconv.Itoa(src.ServerPort))
}

// HostSourceFromRequest reads the host attributes of an HTTP request,
// WebSocket upgrades included.
func HostSourceFromRequest(r *http.Request) HostSource {
	src := HostSource{
		Host:          r.Host,
		ForwardedHost: r.Header.Get(config.HeaderForwardedHost),
	}
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if host, port, err := net.SplitHostPort(addr.String()); err == nil {
			src.ServerAddr = host
			src.ServerPort, _ = strconv.Atoi(port)
		}
	}
	return src
}

// HostnameFromRequest returns the normalized hostname of r, "" when none.
func HostnameFromRequest(r *http.Request) string {
	return Normalize(ExtractHostname(HostSourceFromRequest(r)))
}
