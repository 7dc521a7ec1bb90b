package dto

import "time"

type WebhookAckResponse struct {
	Status string `json:"status"`
}

type SubscriptionCreateResponse struct {
	SubscriptionID string `json:"subscription_id"`
	KeyID          string `json:"razorpay_key_id"`
	ShortURL       string `json:"short_url,omitempty"`
}

type SubscriptionCancelResponse struct {
	Status string `json:"status"`
}

type SubscriptionStatusResponse struct {
	PlanType               string     `json:"plan_type"`
	IsPro                  bool       `json:"is_pro"`
	PlanStatus             string     `json:"plan_status,omitempty"`
	SubscriptionStatus     string     `json:"subscription_status,omitempty"`
	SubscriptionValidUntil *time.Time `json:"subscription_valid_until"`
	AccessUntil            *time.Time `json:"access_until"`
	HasSubscription        bool       `json:"has_subscription"`
}

type EntitlementsResponse struct {
	IsPro                   bool       `json:"is_pro"`
	PlanType                string     `json:"plan_type"`
	AccessUntil             *time.Time `json:"access_until,omitempty"`
	GenerationIntervalDays  int        `json:"generation_interval_days"`
	CanGenerate             bool       `json:"can_generate"`
	NextGenerationAllowedAt *time.Time `json:"next_generation_allowed_at"`
	IntegrationsEnabled     bool       `json:"integrations_enabled"`
}

type BillingFollowupResponse struct {
	ID              string    `json:"id"`
	ProviderEventID string    `json:"provider_event_id,omitempty"`
	Event           string    `json:"event"`
	SubscriptionID  string    `json:"subscription_id,omitempty"`
	PaymentID       string    `json:"payment_id,omitempty"`
	Outcome         string    `json:"outcome"`
	ReceivedAt      time.Time `json:"received_at"`
}

type BillingFollowupsResponse struct {
	Items []BillingFollowupResponse `json:"items"`
}

type BillingFollowupResolveRequest struct {
	Resolution string `json:"resolution"`
}
