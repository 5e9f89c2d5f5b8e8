package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const clientIPKey contextKey = "clientIp"

// ProxyResolver works out the client address. X-Forwarded-For is only read
// when the request comes from a trusted proxy, and then from the right,
// skipping trusted hops.
type ProxyResolver struct {
	trusted []netip.Prefix
}

// NewProxyResolver parses trusted proxies given as IPs or CIDRs. Invalid
// entries are skipped and reported in the error.
func NewProxyResolver(trusted []string) (*ProxyResolver, error) {
	r := &ProxyResolver{}
	var bad []string
	for _, entry := range trusted {
		if p, err := netip.ParsePrefix(entry); err == nil {
			r.trusted = append(r.trusted, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			r.trusted = append(r.trusted, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return r, fmt.Errorf("invalid trusted proxies: %s", strings.Join(bad, ", "))
	}
	return r, nil
}

func (r *ProxyResolver) isTrusted(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range r.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// Resolve returns the client IP of r
func (r *ProxyResolver) Resolve(req *http.Request) string {
	ip := remoteIP(req)
	if !r.isTrusted(ip) {
		return ip
	}

	hops := strings.Split(req.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !r.isTrusted(hop) {
			return hop
		}
		ip = hop
	}
	return ip
}

// Handler stores the resolved client IP in the request context
func (r *ProxyResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), clientIPKey, r.Resolve(req))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// ClientIP returns the IP stored by ProxyResolver, or the remote address
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return remoteIP(r)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
