package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-image-share/internal/interface/http"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
)

// UserModule wires account and profile routes under /api/v1/users.
// Public: signup, login, forgotPassword, resetPassword/:resetToken
// Protected: everything else, behind middleware.Protect
type UserModule struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Guard  middleware.Authenticator
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewUserModule(auth *handlers.AuthHandler, users *handlers.UserHandler, guard middleware.Authenticator, rdb *redis.Client, logger *logrus.Logger) *UserModule {
	return &UserModule{Auth: auth, Users: users, Guard: guard, Redis: rdb, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")

	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	forgotLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	users.POST("/signup", loginLimiter, m.Auth.Signup)
	users.POST("/login", loginLimiter, m.Auth.Login)
	users.POST("/forgotPassword", forgotLimiter, m.Auth.ForgotPassword)
	users.PATCH("/resetPassword/:resetToken", resetLimiter, m.Auth.ResetPassword)

	auth := users.Group("")
	auth.Use(
		middleware.Protect(m.Guard, m.Logger),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("", m.Users.List)
		auth.POST("/logout", m.Auth.Logout)
		auth.PATCH("/updateMyPassword", m.Auth.UpdateMyPassword)
		auth.PATCH("/updateMe", m.Users.UpdateMe)
		auth.DELETE("/deleteMe", m.Users.DeleteMe)
		auth.PATCH("/:id", m.Users.UpdateUser)
		auth.DELETE("/:id", m.Users.DeleteUser)
	}
}
