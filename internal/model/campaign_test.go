package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCounts(t *testing.T) {
	recipients := []Recipient{
		{Status: RecipientSent},
		{Status: RecipientSent},
		{Status: RecipientFailed},
		{Status: RecipientPending},
	}

	counts := ComputeCounts(recipients, 3)
	assert.Equal(t, Counts{
		Total:   4,
		Valid:   4,
		Invalid: 3,
		Sent:    2,
		Failed:  1,
		Pending: 1,
	}, counts)
}

func TestComputeCountsEmpty(t *testing.T) {
	assert.Equal(t, Counts{Invalid: 2}, ComputeCounts(nil, 2))
}

func TestCampaignStatusEligible(t *testing.T) {
	assert.True(t, CampaignQueued.Eligible())
	assert.True(t, CampaignRunning.Eligible())

	for _, s := range []CampaignStatus{CampaignDraft, CampaignCompleted, CampaignStopped, CampaignFailed} {
		assert.False(t, s.Eligible(), s.String())
	}
}

func TestRecipientDispatchable(t *testing.T) {
	assert.True(t, Recipient{Status: RecipientPending}.Dispatchable(2))
	assert.True(t, Recipient{Status: RecipientPending, Attempts: 1}.Dispatchable(2))
	assert.False(t, Recipient{Status: RecipientSent}.Dispatchable(2))
	assert.False(t, Recipient{Status: RecipientFailed, Attempts: 2}.Dispatchable(2))
}

func TestParseCountry(t *testing.T) {
	for in, want := range map[string]Country{
		"":     CountryCA,
		"ca":   CountryCA,
		" CA ": CountryCA,
		"au":   CountryAU,
		"NZ":   CountryNZ,
	} {
		got, err := ParseCountry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCountry("US")
	assert.Error(t, err)
}
