package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"userdir/internal/adapter/database"
	httpadapter "userdir/internal/adapter/http"
	"userdir/internal/adapter/telemetry"
	"userdir/pkg/config"
	"userdir/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	appLogger, err := logger.New(cfg.Telemetry.ServiceName, cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(cfg.Telemetry, cfg.Environment, appLogger.Zap())
	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tel.Shutdown(shutdownCtx)
	}()

	tel.StartMetricsServer(ctx)

	db, err := database.Open(cfg.Database)
	if err != nil {
		appLogger.Zap().Fatal("Failed to open database", zap.Error(err))
	}

	defer db.Close()

	tel.PrometheusRegistry.MustRegister(collectors.NewDBStatsCollector(db.DB, cfg.Database.Name))

	server := httpadapter.NewServer(cfg, db, tel.NewTelemetryProbe(), tel.AppMetrics, appLogger)

	if err := server.Run(ctx, 10*time.Second); err != nil {
		appLogger.Zap().Error("Server stopped", zap.Error(err))
	}

	appLogger.Zap().Info("Shutting down gracefully...")
}
