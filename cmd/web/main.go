package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"userdir/internal/adapter/apiclient"
	"userdir/internal/adapter/web"
	"userdir/internal/view"
	"userdir/pkg/config"
	"userdir/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	appLogger, err := logger.New(cfg.Telemetry.ServiceName+"-web", cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer appLogger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program := view.NewProgram(
		apiclient.New(cfg.Web.APIURL, cfg.Web.RequestTimeout),
		view.WithLogger(appLogger.Zap()),
	)
	program.Start(ctx)
	defer program.Stop()

	router, err := web.NewRouter(program, appLogger, cfg.Telemetry.ServiceName+"-web")
	if err != nil {
		appLogger.Zap().Fatal("Failed to parse templates", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Web.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Zap().Info("View server starting", zap.String("addr", srv.Addr), zap.String("api", cfg.Web.APIURL))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Zap().Error("View server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv.Shutdown(shutdownCtx)
	appLogger.Zap().Info("Shutting down gracefully...")
}
