package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
func NewULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewCampaignReference mints the campaign-level provider reference. Every
// send in a campaign reuses it by default so a Stop call can target the
// whole campaign.
func NewCampaignReference() string {
	return "cmp_" + NewULID()
}

// NewMessageReference mints a unique per-dispatch reference, used only
// when the provider is configured for per-message references.
func NewMessageReference() string {
	return "msg_" + NewULID()
}
