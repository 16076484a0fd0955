package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/interface/httperr"
	"github.com/oksasatya/go-image-share/pkg/helpers"
)

const (
	CtxUserKey   = "currentUser"
	CtxUserIDKey = "userID"
)

// Authenticator resolves a bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// BearerToken returns the token from the Authorization header, falling back to the jwt cookie.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if token, err := c.Cookie(helpers.TokenCookie); err == nil {
		return token
	}
	return ""
}

// Protect rejects the request unless it carries a valid token for an active
// user whose password has not changed since the token was issued.
func Protect(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			httperr.Abort(c, logger, &application.AppError{Kind: application.KindUnauthenticated, Message: application.MsgNotLoggedIn})
			return
		}
		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httperr.Abort(c, logger, err)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user attached by Protect.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
