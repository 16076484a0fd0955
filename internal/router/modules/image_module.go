package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-image-share/internal/interface/http"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
)

// ImageModule serves /api/v1/images; every route is protected.
type ImageModule struct {
	Handler *handlers.ImageHandler
	Guard   middleware.Authenticator
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewImageModule(h *handlers.ImageHandler, guard middleware.Authenticator, rdb *redis.Client, logger *logrus.Logger) *ImageModule {
	return &ImageModule{Handler: h, Guard: guard, Redis: rdb, Logger: logger}
}

func (m *ImageModule) Register(rg *gin.RouterGroup) {
	images := rg.Group("/v1/images")
	images.Use(
		middleware.Protect(m.Guard, m.Logger),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		images.POST("", middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Create)
		images.GET("", m.Handler.List)
		images.GET("/tag", m.Handler.SearchByTag)
		images.GET("/:imageID", m.Handler.Get)
		images.DELETE("/:imageID", m.Handler.Delete)
	}
}
