package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignQueued    CampaignStatus = "queued"
	CampaignRunning   CampaignStatus = "running"
	CampaignCompleted CampaignStatus = "completed"
	CampaignStopped   CampaignStatus = "stopped"
	CampaignFailed    CampaignStatus = "failed"
)

func (s CampaignStatus) String() string {
	return string(s)
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignQueued, CampaignRunning, CampaignCompleted, CampaignStopped, CampaignFailed:
		return true
	}
	return false
}

// Eligible reports whether a worker pass should pick this campaign up.
func (s CampaignStatus) Eligible() bool {
	return s == CampaignQueued || s == CampaignRunning
}

// Counts is the cached per-campaign recipient snapshot. It is derived data:
// any reader that finds it missing must recompute from the recipient list.
type Counts struct {
	Total   int `db:"total" json:"total"`
	Valid   int `db:"valid" json:"valid"`
	Invalid int `db:"invalid" json:"invalid"`
	Sent    int `db:"sent" json:"sent"`
	Failed  int `db:"failed" json:"failed"`
	Pending int `db:"pending" json:"pending"`
}

// ComputeCounts rebuilds the snapshot from a recipient list. The invalid
// counter is not derivable from recipients (invalid rows were dropped at
// ingestion), so it is carried through from the previous snapshot.
func ComputeCounts(recipients []Recipient, invalid int) Counts {
	c := Counts{
		Total:   len(recipients),
		Valid:   len(recipients),
		Invalid: invalid,
	}
	for _, r := range recipients {
		switch r.Status {
		case RecipientSent:
			c.Sent++
		case RecipientFailed:
			c.Failed++
		default:
			c.Pending++
		}
	}
	return c
}

// Previews holds up to five rendered sample messages, stored as a JSON column.
type Previews []string

func (p Previews) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *Previews) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("previews: unsupported scan type %T", src)
	}
}

// Campaign is the DB entity persisted in the campaigns table.
type Campaign struct {
	ID              int64          `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	MessageTemplate string         `db:"message_template" json:"message_template"`
	SenderID        *string        `db:"sender_id" json:"sender_id,omitempty"`
	Country         Country        `db:"country" json:"country"`
	Status          CampaignStatus `db:"status" json:"status"`
	Reference       string         `db:"reference" json:"reference"`
	Counts          Counts         `db:"counts" json:"counts"`
	PreviewMessages Previews       `db:"preview_messages" json:"preview_messages"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
