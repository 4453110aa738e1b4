package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id                VARCHAR(20) PRIMARY KEY,
	name              VARCHAR(100) NOT NULL,
	dob               VARCHAR(10),
	age               INTEGER,
	gender            VARCHAR(10),
	contact           VARCHAR(15),
	address           VARCHAR(200),
	emergency_contact VARCHAR(15),
	blood_group       VARCHAR(5),
	diagnosis         VARCHAR(100),
	admit_date        VARCHAR(20),
	discharge_date    VARCHAR(20),
	report_file       VARCHAR(100),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Connect opens an instrumented PostgreSQL pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := otelsql.Open("postgres", cfg.URL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	); err != nil {
		log.Warn("failed to register database stats metrics", zap.Error(err))
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("connected to PostgreSQL",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// EnsureSchema creates the patients table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create patients table: %w", err)
	}
	return nil
}
