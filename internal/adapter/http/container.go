package http

import (
	"github.com/redis/go-redis/v9"

	"userdir/internal/adapter/database"
	"userdir/internal/adapter/database/repository"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/adapter/http/middleware"
	"userdir/internal/core/port"
	"userdir/internal/core/service"
	"userdir/pkg/config"
	"userdir/pkg/logger"
)

type Container struct {
	UserRepo    port.UserRepository
	UserUseCase port.UserService

	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(db *database.DB, probe port.Telemetry, log *logger.LokiLogger) *Container {
	userRepo := repository.NewUserRepository(db, probe)
	userSvc := service.NewUserService(userRepo, probe)

	return &Container{
		UserRepo:      userRepo,
		UserUseCase:   userSvc,
		UserHandler:   handler.NewUserHandler(userSvc, log),
		HealthHandler: handler.NewHealthHandler(userRepo),
	}
}

// NewRateLimitStore picks the counter backend. The returned close func
// releases the Redis client when one was created.
func NewRateLimitStore(cfg *config.AppConfig) (middleware.RateLimitStore, func() error) {
	if cfg.RateLimit.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		return middleware.NewRedisRateLimitStore(client), client.Close
	}

	return middleware.NewMemoryRateLimitStore(), func() error { return nil }
}
