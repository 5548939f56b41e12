package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

// RecipientsRepository is the recipient half of the store contract:
// whole-list read and whole-list replace, no partial-row primitive.
// Callers read-modify-write the full list.
type RecipientsRepository interface {
	GetByCampaign(ctx context.Context, campaignID int64) ([]model.Recipient, error)
	SaveAll(ctx context.Context, tx *sqlx.Tx, campaignID int64, recipients []model.Recipient) error
}

type RecipientsRepositoryImpl struct {
	db *sqlx.DB
}

func NewRecipientsRepository(db *sqlx.DB) *RecipientsRepositoryImpl {
	return &RecipientsRepositoryImpl{db: db}
}

var _ RecipientsRepository = (*RecipientsRepositoryImpl)(nil)

func (r *RecipientsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

// GetByCampaign returns the stored recipient list in stable stored order.
func (r *RecipientsRepositoryImpl) GetByCampaign(ctx context.Context, campaignID int64) ([]model.Recipient, error) {
	var out []model.Recipient
	err := r.db.SelectContext(ctx, &out, `
		SELECT campaign_id, position, phone, customer_name, receiver_name, country,
		       rendered_message, status, attempts, provider_message_id,
		       provider_status, provider_response, http_code, last_error, sent_at
		  FROM recipients
		 WHERE campaign_id = ?
		 ORDER BY position
	`, campaignID)
	return out, err
}

// SaveAll replaces the campaign's whole recipient list in one transaction.
func (r *RecipientsRepositoryImpl) SaveAll(ctx context.Context, tx *sqlx.Tx, campaignID int64, recipients []model.Recipient) error {
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipients WHERE campaign_id = ?`, campaignID); err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}

		rows := make([]model.Recipient, len(recipients))
		for i, rec := range recipients {
			rec.CampaignID = campaignID
			rec.Position = i
			rows[i] = rec
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO recipients
			    (campaign_id, position, phone, customer_name, receiver_name, country,
			     rendered_message, status, attempts, provider_message_id,
			     provider_status, provider_response, http_code, last_error, sent_at)
			VALUES
			    (:campaign_id, :position, :phone, :customer_name, :receiver_name, :country,
			     :rendered_message, :status, :attempts, :provider_message_id,
			     :provider_status, :provider_response, :http_code, :last_error, :sent_at)
		`, rows)
		return err
	})
}
