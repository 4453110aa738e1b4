package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/db"
	apphttp "github.com/WailSalutem-Health-Care/patient-registry-service/internal/http"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/logger"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/metrics"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "patient-registry: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitProvider(ctx, cfg.Telemetry, cfg.App, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	appMetrics, err := telemetry.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	database, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, database); err != nil {
		return err
	}

	uploadDir, err := filepath.Abs(cfg.Storage.UploadFolder)
	if err != nil {
		return fmt.Errorf("failed to resolve upload folder: %w", err)
	}
	store, err := reports.NewDiskStore(afero.NewOsFs(), uploadDir, log)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector("patient_registry")

	var publisher messaging.PublisherInterface
	if cfg.RabbitMQ.Enabled {
		p, err := messaging.NewPublisher(cfg.RabbitMQ, collector, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, patient events will not be published", zap.Error(err))
		} else {
			publisher = p
			defer p.Close()
		}
	}

	service := patient.NewService(patient.NewRepository(database), store, publisher, appMetrics, log)
	handler := patient.NewHandler(service, cfg.Storage.MaxUploadBytes, log)

	router := apphttp.SetupRouter(apphttp.RouterDeps{
		ServiceName:    cfg.Telemetry.ServiceName,
		PatientHandler: handler,
		Metrics:        collector,
		Limiter:        apphttp.NewIPRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		DB:             database,
		CORS:           cfg.CORS,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("patient registry listening",
			zap.String("addr", srv.Addr),
			zap.String("upload_folder", uploadDir),
			zap.String("environment", cfg.App.Environment),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
