package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie carrying the bearer token.
const TokenCookie = "jwt"

type Manager struct {
	Domain string
	Secure bool
	MaxAge time.Duration
	// TrustProxy lets X-Forwarded-Proto mark a request as TLS.
	TrustProxy bool
}

func NewCookie(domain string, secure, trustProxy bool, maxAge time.Duration) *Manager {
	return &Manager{Domain: domain, Secure: secure, MaxAge: maxAge, TrustProxy: trustProxy}
}

// SetToken writes the HttpOnly token cookie. Secure is forced on for TLS requests.
func (m *Manager) SetToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(m.MaxAge.Seconds()), "/", m.Domain, m.secure(c), true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "", -1, "/", m.Domain, m.secure(c), true)
}

func (m *Manager) secure(c *gin.Context) bool {
	if m.Secure || c.Request.TLS != nil {
		return true
	}
	return m.TrustProxy && strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
