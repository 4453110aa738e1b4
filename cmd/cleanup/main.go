package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/db"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/logger"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
)

// Removes report files in the upload folder that no patient record points to.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "report cleanup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	log.Info("orphaned report cleanup starting", zap.Duration("grace_period", patient.OrphanGracePeriod))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer database.Close()

	uploadDir, err := filepath.Abs(cfg.Storage.UploadFolder)
	if err != nil {
		return fmt.Errorf("failed to resolve upload folder: %w", err)
	}
	store, err := reports.NewDiskStore(afero.NewOsFs(), uploadDir, log)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}

	cleanupService := patient.NewCleanupService(patient.NewRepository(database), store, log)

	count, err := cleanupService.GetOrphanedReportsCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count orphaned reports: %w", err)
	}

	log.Info("orphaned reports found", zap.Int("count", count))
	if count == 0 {
		log.Info("no cleanup needed")
		return nil
	}

	deleted, err := cleanupService.CleanupOrphanedReports(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	log.Info("orphaned report cleanup finished", zap.Int("deleted", deleted))
	return nil
}
