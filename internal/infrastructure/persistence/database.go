package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockledger/backend/internal/infrastructure/config"
)

// Database wraps the GORM handle together with the underlying pool so
// callers never need to unwrap it again.
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase opens a Postgres connection, applies the pool settings
// from the configuration and verifies connectivity with a ping.
// Repositories issue their own transactions, so GORM's per-write
// default transaction is disabled.
func NewDatabase(cfg *config.DatabaseConfig, logger gormlogger.Interface) (*Database, error) {
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.sqlDB.Close()
}

// Ping checks that the database is still reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// PoolStats reports connection pool usage for health reporting.
func (d *Database) PoolStats() sql.DBStats {
	return d.sqlDB.Stats()
}
