package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

// DeliveriesRepository is the ClickHouse delivery log: append-only rows
// written by the ingest worker, read by the deliveries report.
type DeliveriesRepository interface {
	InsertBatch(ctx context.Context, rows []model.DeliveryRow) error
	List(ctx context.Context, campaignID int64, status string, limit, offset int) ([]model.DeliveryRow, error)
}

type deliveriesRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewDeliveriesRepository(ch *sqlx.DB) DeliveriesRepository {
	return &deliveriesRepository{ch: ch}
}

func (r *deliveriesRepository) InsertBatch(ctx context.Context, rows []model.DeliveryRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.ch.NamedExecContext(ctx, `
		INSERT INTO delivery_log
		    (campaign_id, position, phone, country, status, attempts, http_code, error, occurred_at)
		VALUES
		    (:campaign_id, :position, :phone, :country, :status, :attempts, :http_code, :error, :occurred_at)
	`, rows)
	return err
}

func (r *deliveriesRepository) List(ctx context.Context, campaignID int64, status string, limit, offset int) ([]model.DeliveryRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT campaign_id, position, phone, country, status, attempts, http_code, error, occurred_at
		FROM delivery_log
		WHERE campaign_id = ?
	`
	args := []any{campaignID}

	if status != "" {
		q += " AND status = ?"
		args = append(args, status)
	}

	q += " ORDER BY occurred_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.DeliveryRow
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
