package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-image-share/config"
	"github.com/oksasatya/go-image-share/internal/container"
	pginfra "github.com/oksasatya/go-image-share/internal/infrastructure/postgres"
	"github.com/oksasatya/go-image-share/internal/infrastructure/search"
	"github.com/oksasatya/go-image-share/internal/infrastructure/storage"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
	"github.com/oksasatya/go-image-share/internal/router"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/mailer"
	"github.com/oksasatya/go-image-share/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis (rate limiting)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb, 2*time.Second); err != nil {
		logger.WithError(err).Warn("redis unreachable; rate limits disabled until it recovers")
	}

	// Object storage
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to init %s storage: %v", cfg.StorageBackend, err)
	}
	if mc, ok := store.(*storage.MinioClient); ok {
		if err := mc.EnsureBucket(ctx); err != nil {
			logger.Fatalf("failed to ensure minio bucket: %v", err)
		}
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	// Elasticsearch is optional; tag search falls back to Postgres without it
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := search.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.Fatalf("failed to init elasticsearch: %v", err)
		}
		container.SetES(es)
	}

	// Mail
	sender, closeMail := newMailSender(cfg, logger)
	defer closeMail()

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		logger.Fatalf("failed to register metrics: %v", err)
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetStorage(store)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn))
	container.SetHasher(helpers.NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency))
	container.SetCookies(helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.TrustProxyHeaders, cfg.JWTCookieExpiresIn))
	container.SetMailSender(sender)
	container.SetHTTPMetrics(metrics)

	// Gin engine and global middleware
	r := gin.New()
	if !cfg.TrustProxyHeaders {
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	r.Use(metrics.Handler())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.MaxMultipartMemory = 32 << 20

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// newMailSender picks how reset emails leave the process: logged only,
// queued for cmd/email_worker, or sent to Mailgun inline.
func newMailSender(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; reset emails are logged, not sent")
		return mailer.LogSender{Logger: logger}, noop
	}
	switch cfg.MailDelivery {
	case "queue":
		q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		container.SetRabbitQueue(q)
		return mailer.NewQueueSender(q), q.Close
	default:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			logger.Fatal("Mailgun not configured (MAILGUN_DOMAIN, MAILGUN_API_KEY)")
		}
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), noop
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
