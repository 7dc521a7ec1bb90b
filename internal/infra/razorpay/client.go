package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

var ErrNotConfigured = errors.New("razorpay credentials are not configured")

type Subscription struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	PlanID     string     `json:"plan_id"`
	CustomerID string     `json:"customer_id"`
	ShortURL   string     `json:"short_url,omitempty"`
	CurrentEnd *time.Time `json:"current_end,omitempty"`
	ChargeAt   *time.Time `json:"charge_at,omitempty"`
}

// Client wraps the Razorpay SDK. SDK calls take no context, so each call
// runs in its own goroutine and the caller stops waiting when ctx ends.
type Client struct {
	api   *rzp.Client
	keyID string
}

func New(keyID, keySecret string) *Client {
	c := &Client{keyID: strings.TrimSpace(keyID)}
	if c.keyID != "" && strings.TrimSpace(keySecret) != "" {
		c.api = rzp.NewClient(c.keyID, keySecret)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := call(ctx, func() (map[string]interface{}, error) {
		return c.api.Customer.Create(map[string]interface{}{
			"name":          name,
			"email":         email,
			"fail_existing": "0",
		}, nil)
	})
	if err != nil {
		return "", fmt.Errorf("create razorpay customer: %w", err)
	}
	id := stringField(resp, "id")
	if id == "" {
		return "", fmt.Errorf("create razorpay customer: response has no id")
	}
	return id, nil
}

func (c *Client) CreateSubscription(ctx context.Context, planID, customerID string, totalCount int, notes map[string]string) (Subscription, error) {
	if !c.Configured() {
		return Subscription{}, ErrNotConfigured
	}
	data := map[string]interface{}{
		"plan_id":         planID,
		"total_count":     totalCount,
		"customer_notify": 1,
	}
	if customerID != "" {
		data["customer_id"] = customerID
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	resp, err := call(ctx, func() (map[string]interface{}, error) {
		return c.api.Subscription.Create(data, nil)
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("create razorpay subscription: %w", err)
	}
	return parseSubscription(resp), nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if !c.Configured() {
		return Subscription{}, ErrNotConfigured
	}
	resp, err := call(ctx, func() (map[string]interface{}, error) {
		return c.api.Subscription.Cancel(subscriptionID, map[string]interface{}{"cancel_at_cycle_end": 0}, nil)
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("cancel razorpay subscription: %w", err)
	}
	return parseSubscription(resp), nil
}

func (c *Client) FetchSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if !c.Configured() {
		return Subscription{}, ErrNotConfigured
	}
	resp, err := call(ctx, func() (map[string]interface{}, error) {
		return c.api.Subscription.Fetch(subscriptionID, nil, nil)
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("fetch razorpay subscription: %w", err)
	}
	return parseSubscription(resp), nil
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of body under secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), signature, secret)
}

type result struct {
	resp map[string]interface{}
	err  error
}

func call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		resp, err := fn()
		done <- result{resp: resp, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.resp, r.err
	}
}

func parseSubscription(resp map[string]interface{}) Subscription {
	return Subscription{
		ID:         stringField(resp, "id"),
		Status:     stringField(resp, "status"),
		PlanID:     stringField(resp, "plan_id"),
		CustomerID: stringField(resp, "customer_id"),
		ShortURL:   stringField(resp, "short_url"),
		CurrentEnd: unixField(resp, "current_end"),
		ChargeAt:   unixField(resp, "charge_at"),
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func unixField(m map[string]interface{}, key string) *time.Time {
	var sec int64
	switch v := m[key].(type) {
	case float64:
		sec = int64(v)
	case int64:
		sec = v
	case int:
		sec = int64(v)
	default:
		return nil
	}
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
