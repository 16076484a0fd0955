package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the client address resolved by RealIP.
const CtxRealIPKey = "real_ip"

// RealIP stores the client address used for rate-limit keys. Forwarding
// headers are only honoured when trustHeaders is set, i.e. behind a proxy
// that overwrites them: CF-Connecting-IP first, then the left-most
// X-Forwarded-For entry.
func RealIP(trustHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if trustHeaders {
			if fwd, ok := forwardedIP(c); ok {
				ip = fwd
			}
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}

func forwardedIP(c *gin.Context) (string, bool) {
	if addr, err := netip.ParseAddr(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); err == nil {
		return addr.String(), true
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String(), true
		}
	}
	return "", false
}

// AllowPrivateIP lets loopback and RFC 1918 clients bypass a rate limit.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		return addr.IsLoopback() || addr.IsPrivate()
	}
}
