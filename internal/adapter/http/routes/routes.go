package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userdir/internal/adapter/http/handler"
	"userdir/internal/adapter/http/middleware"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
	"userdir/pkg/logger"
)

type HandlersConfig struct {
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
}

type MiddlewareConfig struct {
	Metrics     *telemetry.AppMetrics
	Logger      *logger.LokiLogger
	RateLimiter *middleware.RateLimiter
}

func SetupRouterWithConfig(handlers HandlersConfig, mw MiddlewareConfig, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.NewHTTPSEnforcer(cfg.Server.EnforceHTTPS, mw.Logger.Zap()).Middleware())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.Logging(mw.Logger))

	if mw.Metrics != nil {
		router.Use(middleware.Metrics(mw.Metrics))
	}

	router.Use(middleware.CORS(cfg.Server.CORSOrigin))

	if mw.RateLimiter != nil {
		router.Use(mw.RateLimiter.Middleware())
	}

	setupRoutes(router, handlers)

	return router
}

func setupRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Health)
	}

	api := router.Group("/api")
	{
		api.GET("/users", handlers.UserHandler.GetAllUsers)
		api.POST("/users", handlers.UserHandler.CreateUser)
		api.PUT("/users", handlers.UserHandler.UpdateUser)
		api.DELETE("/users/:id", handlers.UserHandler.DeleteUser)
	}
}

func SetupRouterForTests(handlers HandlersConfig, corsOrigin string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS(corsOrigin))

	setupRoutes(router, handlers)

	return router
}
