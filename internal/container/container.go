package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/config"
	"github.com/oksasatya/go-image-share/internal/infrastructure/storage"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	objStore    storage.ObjectStorage

	jwtManager *helpers.JWTManager
	hasher     *helpers.PasswordHasher
	cookies    *helpers.Manager

	mailSender  mailer.Sender
	rabbitQueue *helpers.RabbitQueue
	esClient    *elasticsearch.Client
	httpMetrics *middleware.HTTPMetrics
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetStorage(s storage.ObjectStorage)       { objStore = s }
func GetStorage() storage.ObjectStorage        { return objStore }
func SetHasher(h *helpers.PasswordHasher)      { hasher = h }
func GetHasher() *helpers.PasswordHasher       { return hasher }
func SetCookies(m *helpers.Manager)            { cookies = m }
func GetCookies() *helpers.Manager             { return cookies }
func SetMailSender(s mailer.Sender)            { mailSender = s }
func GetMailSender() mailer.Sender             { return mailSender }
func SetRabbitQueue(q *helpers.RabbitQueue)    { rabbitQueue = q }
func GetRabbitQueue() *helpers.RabbitQueue     { return rabbitQueue }
func SetES(c *elasticsearch.Client)            { esClient = c }
func GetES() *elasticsearch.Client             { return esClient }
func SetHTTPMetrics(m *middleware.HTTPMetrics) { httpMetrics = m }
func GetHTTPMetrics() *middleware.HTTPMetrics  { return httpMetrics }
