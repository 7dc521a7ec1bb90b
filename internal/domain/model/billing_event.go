package model

import (
	"encoding/json"
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
)

// BillingEvent is one received webhook delivery as journaled in Postgres.
type BillingEvent struct {
	ID              string                    `json:"id"`
	ProviderEventID string                    `json:"provider_event_id,omitempty"`
	Event           enums.BillingEvent        `json:"event"`
	SubscriptionID  string                    `json:"subscription_id,omitempty"`
	PaymentID       string                    `json:"payment_id,omitempty"`
	UserID          string                    `json:"user_id,omitempty"`
	Outcome         enums.BillingEventOutcome `json:"outcome"`
	NeedsReview     bool                      `json:"needs_review"`
	Payload         json.RawMessage           `json:"payload,omitempty"`
	ReceivedAt      time.Time                 `json:"received_at"`
}
