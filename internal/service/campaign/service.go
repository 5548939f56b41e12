// Package campaign orchestrates campaign creation and operator actions
// against the store. Creation is all-or-nothing: ingestion must succeed
// before any row is written.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/swiftbulk/campaign-gateway/internal/ingest"
	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	"github.com/swiftbulk/campaign-gateway/internal/template"
	"github.com/swiftbulk/campaign-gateway/internal/util"
)

var (
	ErrNotFound        = errors.New("campaign not found")
	ErrNameRequired    = errors.New("campaign name is required")
	ErrMessageRequired = errors.New("campaign message is required")
	ErrMessageTooLong  = fmt.Errorf("message must be %d characters or less", template.MaxMessageLen)
	ErrNotEditable     = errors.New("only draft campaigns can be edited")
)

type Service struct {
	db         *sqlx.DB
	campaigns  repository.CampaignsRepository
	recipients repository.RecipientsRepository
}

func New(db *sqlx.DB, campaigns repository.CampaignsRepository, recipients repository.RecipientsRepository) *Service {
	return &Service{db: db, campaigns: campaigns, recipients: recipients}
}

type CreateInput struct {
	Name            string
	MessageTemplate string
	SenderID        *string
	Country         model.Country
	CSV             io.Reader
}

// Create ingests the CSV and writes the campaign plus its pending
// recipient list in a single transaction. The campaign starts in draft
// with a freshly minted provider reference.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Campaign, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.MessageTemplate == "" {
		return nil, ErrMessageRequired
	}
	if len(in.MessageTemplate) > template.MaxMessageLen {
		return nil, ErrMessageTooLong
	}

	res, err := ingest.ParseCSV(in.CSV, in.MessageTemplate, in.Country)
	if err != nil {
		return nil, err
	}

	c := model.Campaign{
		Name:            in.Name,
		MessageTemplate: in.MessageTemplate,
		SenderID:        in.SenderID,
		Country:         in.Country,
		Status:          model.CampaignDraft,
		Reference:       util.NewCampaignReference(),
		PreviewMessages: res.Previews,
		Counts:          model.ComputeCounts(res.Recipients, res.Invalid),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	c.ID, err = s.campaigns.NextID(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("allocate campaign id: %w", err)
	}

	if err := s.campaigns.Insert(ctx, tx, c); err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	if err := s.recipients.SaveAll(ctx, tx, c.ID, res.Recipients); err != nil {
		return nil, fmt.Errorf("insert recipients: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.campaigns.GetByID(ctx, c.ID)
}

func (s *Service) List(ctx context.Context) ([]model.Campaign, error) {
	return s.campaigns.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

type UpdateInput struct {
	Name     *string
	SenderID *string
}

// Update edits the mutable campaign fields. Only drafts accept edits;
// anything queued or later is frozen.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.Status != model.CampaignDraft {
		return nil, ErrNotEditable
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}

	err = s.campaigns.Patch(ctx, nil, id, repository.CampaignPatch{
		Name:     in.Name,
		SenderID: in.SenderID,
	})
	if err != nil {
		return nil, fmt.Errorf("patch campaign: %w", err)
	}
	return s.campaigns.GetByID(ctx, id)
}

// Start queues a campaign for the next worker pass. Resume is the same
// transition from stopped.
func (s *Service) Start(ctx context.Context, id int64) error {
	return s.transition(ctx, id, model.CampaignQueued)
}

func (s *Service) Resume(ctx context.Context, id int64) error {
	return s.transition(ctx, id, model.CampaignQueued)
}

// Stop requests a cooperative stop; the worker honors it at the next
// recipient boundary.
func (s *Service) Stop(ctx context.Context, id int64) error {
	return s.transition(ctx, id, model.CampaignStopped)
}

func (s *Service) transition(ctx context.Context, id int64, status model.CampaignStatus) error {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	return s.campaigns.SetStatus(ctx, nil, id, status, nil)
}

// Recipients exposes the stored list for the CSV report.
func (s *Service) Recipients(ctx context.Context, id int64) ([]model.Recipient, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return s.recipients.GetByCampaign(ctx, id)
}
