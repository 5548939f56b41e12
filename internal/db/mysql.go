package db

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/config"
)

// NewMySQL opens a *sqlx.DB with pool settings from config and verifies
// connectivity with a bounded ping.
func NewMySQL(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	dbx, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	applyPool(dbx, cfg)

	if err := pingWithTimeout(dbx, cfg, 5); err != nil {
		_ = dbx.Close()
		return nil, err
	}

	return dbx, nil
}
