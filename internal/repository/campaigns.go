package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

const campaignColumns = `
	id, name, message_template, sender_id, country, status, reference,
	preview_messages, created_at, updated_at,
	total_count   AS "counts.total",
	valid_count   AS "counts.valid",
	invalid_count AS "counts.invalid",
	sent_count    AS "counts.sent",
	failed_count  AS "counts.failed",
	pending_count AS "counts.pending"
`

// CampaignsRepository is the campaign half of the store contract. Status
// and counts are only ever written through it; the worker never edits
// rows directly.
type CampaignsRepository interface {
	// List returns all campaigns newest first (created_at desc, id desc).
	List(ctx context.Context) ([]model.Campaign, error)
	// GetByID returns nil when the campaign does not exist.
	GetByID(ctx context.Context, id int64) (*model.Campaign, error)
	// NextID allocates max(id)+1 inside the caller's transaction.
	NextID(ctx context.Context, tx *sqlx.Tx) (int64, error)
	Insert(ctx context.Context, tx *sqlx.Tx, c model.Campaign) error
	// SetStatus updates status (and counts when non-nil) and bumps
	// updated_at. No-op when the campaign does not exist.
	SetStatus(ctx context.Context, tx *sqlx.Tx, id int64, status model.CampaignStatus, counts *model.Counts) error
	// Patch shallow-merges the given fields into the campaign record.
	Patch(ctx context.Context, tx *sqlx.Tx, id int64, p CampaignPatch) error
}

// CampaignPatch carries optional field updates; nil fields are untouched.
type CampaignPatch struct {
	Name     *string
	SenderID *string
	Counts   *model.Counts
}

type CampaignsRepositoryImpl struct {
	db *sqlx.DB
}

func NewCampaignsRepository(db *sqlx.DB) *CampaignsRepositoryImpl {
	return &CampaignsRepositoryImpl{db: db}
}

var _ CampaignsRepository = (*CampaignsRepositoryImpl)(nil)

func (r *CampaignsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
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

func (r *CampaignsRepositoryImpl) List(ctx context.Context) ([]model.Campaign, error) {
	var out []model.Campaign
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+campaignColumns+`
		  FROM campaigns
		 ORDER BY created_at DESC, id DESC
	`)
	return out, err
}

func (r *CampaignsRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT `+campaignColumns+`
		  FROM campaigns
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NextID allocates monotonically: max existing id + 1. Runs inside the
// creation transaction so concurrent creates serialize on the row locks.
func (r *CampaignsRepositoryImpl) NextID(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var next int64
	err := tx.GetContext(ctx, &next, `
		SELECT COALESCE(MAX(id), 0) + 1 FROM campaigns FOR UPDATE
	`)
	return next, err
}

func (r *CampaignsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, c model.Campaign) error {
	const q = `
		INSERT INTO campaigns
		    (id, name, message_template, sender_id, country, status, reference,
		     preview_messages,
		     total_count, valid_count, invalid_count, sent_count, failed_count, pending_count,
		     created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			c.ID, c.Name, c.MessageTemplate, c.SenderID, c.Country.String(),
			c.Status.String(), c.Reference, c.PreviewMessages,
			c.Counts.Total, c.Counts.Valid, c.Counts.Invalid,
			c.Counts.Sent, c.Counts.Failed, c.Counts.Pending,
		)
		return err
	})
}

func (r *CampaignsRepositoryImpl) SetStatus(ctx context.Context, tx *sqlx.Tx, id int64, status model.CampaignStatus, counts *model.Counts) error {
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		if counts == nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE campaigns SET status = ?, updated_at = NOW() WHERE id = ?
			`, status.String(), id)
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE campaigns
			   SET status = ?,
			       total_count = ?, valid_count = ?, invalid_count = ?,
			       sent_count = ?, failed_count = ?, pending_count = ?,
			       updated_at = NOW()
			 WHERE id = ?
		`, status.String(),
			counts.Total, counts.Valid, counts.Invalid,
			counts.Sent, counts.Failed, counts.Pending, id)
		return err
	})
}

func (r *CampaignsRepositoryImpl) Patch(ctx context.Context, tx *sqlx.Tx, id int64, p CampaignPatch) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.SenderID != nil {
		sets = append(sets, "sender_id = ?")
		args = append(args, *p.SenderID)
	}
	if p.Counts != nil {
		sets = append(sets,
			"total_count = ?", "valid_count = ?", "invalid_count = ?",
			"sent_count = ?", "failed_count = ?", "pending_count = ?")
		args = append(args,
			p.Counts.Total, p.Counts.Valid, p.Counts.Invalid,
			p.Counts.Sent, p.Counts.Failed, p.Counts.Pending)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := "UPDATE campaigns SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, args...)
		return err
	})
}
