package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/internal/adapter/database"
	"userdir/internal/adapter/http/middleware"
	"userdir/internal/adapter/http/routes"
	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
	"userdir/pkg/logger"
)

type Server struct {
	srv    *http.Server
	logger *logger.LokiLogger
	close  func() error
}

func NewServer(cfg *config.AppConfig, db *database.DB, probe port.Telemetry, metrics *telemetry.AppMetrics, log *logger.LokiLogger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container := NewContainer(db, probe, log)

	mw := routes.MiddlewareConfig{
		Metrics: metrics,
		Logger:  log,
	}

	closeStore := func() error { return nil }

	if cfg.RateLimit.Enabled {
		var store middleware.RateLimitStore
		store, closeStore = NewRateLimitStore(cfg)
		mw.RateLimiter = middleware.NewRateLimiter(store, cfg.RateLimit, log.Zap(), metrics)
	}

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		UserHandler:   container.UserHandler,
		HealthHandler: container.HealthHandler,
	}, mw, cfg)

	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: log,
		close:  closeStore,
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Zap().Info("Server starting", zap.String("addr", s.srv.Addr))

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Zap().Info("Server shutting down")

	err := s.srv.Shutdown(shutdownCtx)
	s.close()

	return err
}
