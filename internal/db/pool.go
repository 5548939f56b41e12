package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/config"
)

func applyPool(dbx *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		dbx.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		dbx.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		dbx.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		dbx.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func pingWithTimeout(dbx *sqlx.DB, cfg config.DatabaseConfig, defaultSecs int) error {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = time.Duration(defaultSecs) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return dbx.PingContext(ctx)
}
