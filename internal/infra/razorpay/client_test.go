package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"
)

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := `{"event":"subscription.charged"}`
	if !VerifyWebhookSignature([]byte(body), sign(body, "whsec"), "whsec") {
		t.Fatalf("valid signature rejected")
	}
	if VerifyWebhookSignature([]byte(body), sign(body, "other"), "whsec") {
		t.Fatalf("signature with wrong secret accepted")
	}
	if VerifyWebhookSignature([]byte(body), "", "whsec") {
		t.Fatalf("empty signature accepted")
	}
	if VerifyWebhookSignature([]byte(body), sign(body, ""), "") {
		t.Fatalf("empty secret accepted")
	}
}

func TestClientWithoutCredentialsIsNotConfigured(t *testing.T) {
	c := New("rzp_test", "")
	if c.Configured() {
		t.Fatalf("client without secret should not be configured")
	}
	if _, err := c.FetchSubscription(context.Background(), "sub_1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestParseSubscription(t *testing.T) {
	got := parseSubscription(map[string]interface{}{
		"id":          "sub_1",
		"status":      "active",
		"customer_id": "cust_1",
		"current_end": float64(1767225600),
		"charge_at":   nil,
	})
	if got.ID != "sub_1" || got.Status != "active" || got.CustomerID != "cust_1" {
		t.Fatalf("unexpected subscription: %+v", got)
	}
	if got.CurrentEnd == nil || !got.CurrentEnd.Equal(time.Unix(1767225600, 0)) {
		t.Fatalf("unexpected current_end: %v", got.CurrentEnd)
	}
	if got.ChargeAt != nil {
		t.Fatalf("nil charge_at should stay nil")
	}
}

func TestCallHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := call(ctx, func() (map[string]interface{}, error) {
		t.Fatalf("call should not run with cancelled context")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
