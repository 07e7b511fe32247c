package database

import (
	"context"
	"fmt"
	"time"

	"manytomany/config"
	"manytomany/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	logLevel                  = logger.Warn
	ignoreRecordNotFoundError = true
)

// Open connects to postgres, registers the ping plugin and tunes the pool.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	con, err := gorm.Open(getDriverConnection(cfg),
		&gorm.Config{
			NamingStrategy: NewNamingStrategy(),
			Logger: logger.New(logging.StdLog(log), logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logLevel,
				IgnoreRecordNotFoundError: ignoreRecordNotFoundError,
				Colorful:                  false,
			}),
			QueryFields: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := con.Use(newPingPlugin(pingRetryInterval, cfg.PingTimeout)); err != nil {
		return nil, fmt.Errorf("failed to register ping plugin: %w", err)
	}

	internalDb, err := con.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	internalDb.SetMaxOpenConns(cfg.MaxOpenConns)
	internalDb.SetMaxIdleConns(cfg.MaxIdleConns)
	internalDb.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	// https://github.com/golang/go/issues/41114
	internalDb.SetConnMaxLifetime(cfg.ConnMaxLife)

	if err := internalDb.PingContext(ctx); err != nil {
		_ = internalDb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	return con, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	internalDb, err := db.DB()
	if err != nil {
		return err
	}
	return internalDb.Close()
}

func getDriverConnection(cfg config.DatabaseConfig) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	})
}
