package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/pkg/helpers"
)

type fakeAuthenticator struct {
	tokens map[string]*entity.User
	seen   []string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	f.seen = append(f.seen, token)
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	return nil, &application.AppError{Kind: application.KindUnauthenticated, Message: application.MsgNotLoggedIn}
}

func protectedRouter(auth Authenticator, reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Protect(auth, nil), func(c *gin.Context) {
		*reached = true
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, u.ID)
	})
	return r
}

func TestProtect_HeaderThenCookie(t *testing.T) {
	auth := &fakeAuthenticator{tokens: map[string]*entity.User{
		"header-token": {ID: "u-header"},
		"cookie-token": {ID: "u-cookie"},
	}}
	var reached bool
	r := protectedRouter(auth, &reached)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "cookie-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-header", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "cookie-token"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-cookie", w.Body.String())
}

func TestProtect_RejectsWithoutCallingHandler(t *testing.T) {
	auth := &fakeAuthenticator{}
	var reached bool
	r := protectedRouter(auth, &reached)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, auth.seen, "no token means no verification attempt")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		require.Equal(t, want, BearerToken(c), header)
	}
}
