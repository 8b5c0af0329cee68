package middleware

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP returns the address chat limits are keyed on: the first valid
// X-Forwarded-For entry, then X-Real-IP, then the socket peer. Header values
// that do not parse as an address are ignored, and IPv4-mapped IPv6 forms
// collapse to plain IPv4 so one client keeps one key.
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := canonicalIP(first); ok {
			return ip
		}
	}
	if ip, ok := canonicalIP(c.GetHeader("X-Real-IP")); ok {
		return ip
	}

	host := c.Request.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip, ok := canonicalIP(host); ok {
		return ip
	}
	return host
}

func canonicalIP(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
