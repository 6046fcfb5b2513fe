// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "github.com/smartmeals/v2/internal/infrastructure/persistence/gorm"
)

// Options configures the embedded database
type Options struct {
	Path               string
	LogLevel           string
	SlowQueryThreshold time.Duration
	AutoMigrate        bool
}

// SetupDatabase opens the SQLite database and migrates the schema. An empty
// path opens a private in-memory database.
func SetupDatabase(opts Options, log *zap.Logger) (*gorm.DB, error) {
	dsn := opts.Path
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	dsn += "?_foreign_keys=on&_busy_timeout=5000"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormModels.NewLogger(log, opts.LogLevel, opts.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps in-memory databases alive and serializes
	// writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if opts.AutoMigrate {
		if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Info("SQLite database ready",
		zap.String("path", opts.Path),
		zap.Bool("auto_migrate", opts.AutoMigrate),
	)
	return db, nil
}
