package db

import (
	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/config"
)

// NewClickHouse opens the analytics connection used by the deliveries
// report and the ingest worker sink.
func NewClickHouse(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dbx, err := sqlx.Open("clickhouse", cfg.DSN)
	if err != nil {
		return nil, err
	}
	applyPool(dbx, cfg)

	if err := pingWithTimeout(dbx, cfg, 3); err != nil {
		_ = dbx.Close()
		return nil, err
	}

	return dbx, nil
}
