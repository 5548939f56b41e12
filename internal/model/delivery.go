package model

import "time"

// DeliveryEvent is the payload published to Kafka after each dispatch
// attempt. The ingest worker folds these into the ClickHouse delivery log.
type DeliveryEvent struct {
	CampaignID int64           `json:"campaign_id"`
	Position   int             `json:"position"`
	Phone      string          `json:"phone"`
	Country    Country         `json:"country"`
	Status     RecipientStatus `json:"status"`
	Attempts   int             `json:"attempts"`
	HTTPCode   int             `json:"http_code"`
	Error      string          `json:"error,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// DeliveryRow is the ClickHouse entity backing the deliveries report.
type DeliveryRow struct {
	CampaignID int64     `db:"campaign_id" json:"campaign_id"`
	Position   int       `db:"position" json:"position"`
	Phone      string    `db:"phone" json:"phone"`
	Country    string    `db:"country" json:"country"`
	Status     string    `db:"status" json:"status"`
	Attempts   int       `db:"attempts" json:"attempts"`
	HTTPCode   int       `db:"http_code" json:"http_code"`
	Error      string    `db:"error" json:"error,omitempty"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
