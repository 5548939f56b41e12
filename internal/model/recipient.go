package model

import "time"

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

func (s RecipientStatus) String() string { return string(s) }

func (s RecipientStatus) Valid() bool {
	return s == RecipientPending || s == RecipientSent || s == RecipientFailed
}

// Recipient is one phone number inside a campaign plus its per-send
// tracking fields. Rows are created once at campaign creation and mutated
// only by the send worker.
type Recipient struct {
	CampaignID        int64           `db:"campaign_id" json:"campaign_id"`
	Position          int             `db:"position" json:"position"`
	Phone             string          `db:"phone" json:"phone"`
	CustomerName      string          `db:"customer_name" json:"customer_name"`
	ReceiverName      string          `db:"receiver_name" json:"receiver_name"`
	Country           Country         `db:"country" json:"country"`
	RenderedMessage   string          `db:"rendered_message" json:"rendered_message"`
	Status            RecipientStatus `db:"status" json:"status"`
	Attempts          int             `db:"attempts" json:"attempts"`
	ProviderMessageID *string         `db:"provider_message_id" json:"provider_message_id,omitempty"`
	ProviderStatus    *string         `db:"provider_status" json:"provider_status,omitempty"`
	ProviderResponse  *string         `db:"provider_response" json:"provider_response,omitempty"`
	HTTPCode          *int            `db:"http_code" json:"http_code,omitempty"`
	LastError         *string         `db:"last_error" json:"last_error,omitempty"`
	SentAt            *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
}

// Dispatchable reports whether a worker pass may still send to this
// recipient: sent rows are never re-dispatched, failed rows only while
// attempts remain.
func (r Recipient) Dispatchable(maxAttempts int) bool {
	if r.Status == RecipientSent {
		return false
	}
	if r.Status == RecipientFailed && r.Attempts >= maxAttempts {
		return false
	}
	return true
}
