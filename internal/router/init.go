package router

import (
	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/container"
	"github.com/oksasatya/go-image-share/internal/domain/repository"
	pginfra "github.com/oksasatya/go-image-share/internal/infrastructure/postgres"
	"github.com/oksasatya/go-image-share/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-image-share/internal/interface/http"
	"github.com/oksasatya/go-image-share/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repository.UserRepository
	Auth    *application.AuthService
	Reset   *application.PasswordResetService
	Service *application.UserService
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	auth := application.NewAuthService(repo, container.GetHasher(), container.GetJWT(), logger)
	reset := application.NewPasswordResetService(auth, container.GetMailSender(), cfg.AppName, cfg.PublicBaseURL, cfg.ResetTokenTTL, cfg.ResetHideUnknownEmail)
	service := application.NewUserService(repo, container.GetStorage(), logger)

	return UserModuleDeps{Repo: repo, Auth: auth, Reset: reset, Service: service}
}

func buildImageService() *application.ImageService {
	cfg := container.GetConfig()
	// A nil *ImageIndex must not leak into the interface.
	var index application.ImageIndex
	if es := container.GetES(); es != nil {
		index = search.NewImageIndex(es, cfg.ESImagesIndex)
	}
	return application.NewImageService(
		pginfra.NewImageRepository(container.GetPGPool()),
		container.GetStorage(),
		index,
		cfg.MaxUploadImages,
		container.GetLogger(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	logger := container.GetLogger()
	rdb := container.GetRedis()
	userDeps := buildUserDeps()

	authHandler := handlers.NewAuthHandler(userDeps.Auth, userDeps.Reset, container.GetCookies(), logger)
	userHandler := handlers.NewUserHandler(userDeps.Service, logger)
	imageHandler := handlers.NewImageHandler(buildImageService(), logger)

	r.Add(modules.NewUserModule(authHandler, userHandler, userDeps.Auth, rdb, logger))
	r.Add(modules.NewImageModule(imageHandler, userDeps.Auth, rdb, logger))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb, nil))
	}

	var db handlers.Pinger
	if pool := container.GetPGPool(); pool != nil {
		db = pool
	}
	r.Engine.GET("/healthz", handlers.NewHealthHandler(db).Healthz)
}
