package campaign

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
)

type fakeCampaignsRepo struct {
	byID map[int64]*model.Campaign
}

func (f *fakeCampaignsRepo) List(ctx context.Context) ([]model.Campaign, error) {
	out := make([]model.Campaign, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCampaignsRepo) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaignsRepo) NextID(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	return int64(len(f.byID)) + 1, nil
}

func (f *fakeCampaignsRepo) Insert(ctx context.Context, tx *sqlx.Tx, c model.Campaign) error {
	f.byID[c.ID] = &c
	return nil
}

func (f *fakeCampaignsRepo) SetStatus(ctx context.Context, tx *sqlx.Tx, id int64, status model.CampaignStatus, counts *model.Counts) error {
	if c, ok := f.byID[id]; ok {
		c.Status = status
		if counts != nil {
			c.Counts = *counts
		}
	}
	return nil
}

func (f *fakeCampaignsRepo) Patch(ctx context.Context, tx *sqlx.Tx, id int64, p repository.CampaignPatch) error {
	c, ok := f.byID[id]
	if !ok {
		return nil
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.SenderID != nil {
		c.SenderID = p.SenderID
	}
	if p.Counts != nil {
		c.Counts = *p.Counts
	}
	return nil
}

var _ repository.CampaignsRepository = (*fakeCampaignsRepo)(nil)

type fakeRecipientsRepo struct{}

func (f *fakeRecipientsRepo) GetByCampaign(ctx context.Context, campaignID int64) ([]model.Recipient, error) {
	return nil, nil
}

func (f *fakeRecipientsRepo) SaveAll(ctx context.Context, tx *sqlx.Tx, campaignID int64, recipients []model.Recipient) error {
	return nil
}

func newTestService(campaigns ...model.Campaign) (*Service, *fakeCampaignsRepo) {
	repo := &fakeCampaignsRepo{byID: make(map[int64]*model.Campaign)}
	for i := range campaigns {
		c := campaigns[i]
		repo.byID[c.ID] = &c
	}
	return New(nil, repo, &fakeRecipientsRepo{}), repo
}

func strptr(s string) *string { return &s }

func TestUpdateDraftCampaign(t *testing.T) {
	svc, _ := newTestService(model.Campaign{ID: 1, Name: "old", Status: model.CampaignDraft})

	updated, err := svc.Update(context.Background(), 1, UpdateInput{
		Name:     strptr("renamed"),
		SenderID: strptr("AcmeCo"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	require.NotNil(t, updated.SenderID)
	assert.Equal(t, "AcmeCo", *updated.SenderID)
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	for _, status := range []model.CampaignStatus{
		model.CampaignQueued, model.CampaignRunning, model.CampaignCompleted,
		model.CampaignStopped, model.CampaignFailed,
	} {
		svc, _ := newTestService(model.Campaign{ID: 1, Status: status})
		_, err := svc.Update(context.Background(), 1, UpdateInput{Name: strptr("x")})
		assert.ErrorIs(t, err, ErrNotEditable, status.String())
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(model.Campaign{ID: 1, Name: "keep", Status: model.CampaignDraft})
	_, err := svc.Update(context.Background(), 1, UpdateInput{Name: strptr("   ")})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Update(context.Background(), 42, UpdateInput{Name: strptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitions(t *testing.T) {
	svc, repo := newTestService(model.Campaign{ID: 1, Status: model.CampaignDraft})

	require.NoError(t, svc.Start(context.Background(), 1))
	assert.Equal(t, model.CampaignQueued, repo.byID[1].Status)

	require.NoError(t, svc.Stop(context.Background(), 1))
	assert.Equal(t, model.CampaignStopped, repo.byID[1].Status)

	require.NoError(t, svc.Resume(context.Background(), 1))
	assert.Equal(t, model.CampaignQueued, repo.byID[1].Status)
}

func TestTransitionNotFound(t *testing.T) {
	svc, _ := newTestService()
	assert.ErrorIs(t, svc.Start(context.Background(), 9), ErrNotFound)
	assert.ErrorIs(t, svc.Stop(context.Background(), 9), ErrNotFound)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
