package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-image-share/internal/interface/middleware"
)

// DebugModule exposes expvar and Prometheus metrics under /api/debug.
type DebugModule struct {
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
}

func NewDebugModule(rdb *redis.Client, gatherer prometheus.Gatherer) *DebugModule {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &DebugModule{Redis: rdb, Gatherer: gatherer}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public, rate-limited per IP; private addresses (scrapers) are exempt
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/debug/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
}
