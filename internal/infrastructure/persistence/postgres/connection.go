// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/smartmeals/v2/internal/infrastructure/config"
	gormModels "github.com/smartmeals/v2/internal/infrastructure/persistence/gorm"
)

// ConnectionManager manages the primary PostgreSQL connection pool and any
// read replicas
type ConnectionManager struct {
	config  *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	writeDB *sql.DB
	readDBs []*sql.DB
}

// NewConnectionManager opens the primary pool through the pgx stdlib driver,
// registers read replicas and verifies connectivity
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		config: cfg,
		logger: log.Named("postgres"),
	}

	if err := cm.initializePrimaryConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.Database.ConnMaxLifetime),
		zap.Int("replicas", len(cm.readDBs)),
	)

	return cm, nil
}

func (cm *ConnectionManager) openPool(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db := cm.config.Database
	sqlDB.SetMaxOpenConns(db.MaxOpenConns)
	sqlDB.SetMaxIdleConns(db.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(db.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(db.ConnMaxIdleTime)
	return sqlDB, nil
}

func (cm *ConnectionManager) initializePrimaryConnection(ctx context.Context) error {
	sqlDB, err := cm.openPool(cm.config.GetDSN())
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormModels.NewLogger(cm.logger, cm.config.Database.LogLevel, cm.config.Database.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	cm.db = db
	cm.writeDB = sqlDB
	return nil
}

// initializeReadReplicas routes reads to the configured replica hosts
func (cm *ConnectionManager) initializeReadReplicas() error {
	if len(cm.config.Database.Replicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, 0, len(cm.config.Database.Replicas))
	for _, host := range cm.config.Database.Replicas {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			host,
			cm.config.Database.Port,
			cm.config.Database.Username,
			cm.config.Database.Password,
			cm.config.Database.Database,
			cm.config.Database.SSLMode,
		)
		pool, err := cm.openPool(dsn)
		if err != nil {
			return fmt.Errorf("open replica %s: %w", host, err)
		}
		cm.readDBs = append(cm.readDBs, pool)
		replicas = append(replicas, postgres.New(postgres.Config{Conn: pool}))
	}

	err := cm.db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.logger.Info("Read replicas configured", zap.Int("replica_count", len(replicas)))
	return nil
}

// GetDB returns the main database connection
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary pool, used by schema migrations
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// HealthCheck pings the primary and every replica
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.writeDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}

	for i, readDB := range cm.readDBs {
		if err := readDB.PingContext(ctx); err != nil {
			cm.logger.Warn("Read replica ping failed",
				zap.Int("replica_index", i),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Stats returns connection pool statistics of the primary
func (cm *ConnectionManager) Stats() sql.DBStats {
	return cm.writeDB.Stats()
}

// Close closes all database connections
func (cm *ConnectionManager) Close() error {
	if cm.writeDB != nil {
		if err := cm.writeDB.Close(); err != nil {
			cm.logger.Error("Failed to close primary database", zap.Error(err))
		}
	}

	for i, readDB := range cm.readDBs {
		if err := readDB.Close(); err != nil {
			cm.logger.Error("Failed to close read replica",
				zap.Int("replica_index", i),
				zap.Error(err),
			)
		}
	}

	return nil
}
