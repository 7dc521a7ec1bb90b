package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	pgrepo "github.com/praneeth552/Jobfinder/internal/repo/postgres"
)

type followupsStub struct {
	limit    int
	resolved map[string]string
}

func (s *followupsStub) ListNeedsReview(_ context.Context, limit int) ([]model.BillingEvent, error) {
	s.limit = limit
	return []model.BillingEvent{{
		ID:         "0b7c7f1e-4a43-4a1f-8f5e-4a1a7c1c0c11",
		Event:      enums.BillingEventRefundProcessed,
		PaymentID:  "pay_7",
		Outcome:    enums.BillingEventOutcomeNeedsReview,
		ReceivedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}, nil
}

func (s *followupsStub) Resolve(_ context.Context, id, resolution string, _ time.Time) error {
	if _, done := s.resolved[id]; done {
		return pgrepo.ErrAlreadyResolved
	}
	s.resolved[id] = resolution
	return nil
}

func TestAdminBillingListFollowups(t *testing.T) {
	stub := &followupsStub{resolved: map[string]string{}}
	h := NewAdminBillingHandler(stub, nil)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/admin/billing/followups?limit=10", nil))

	if rr.Code != http.StatusOK || stub.limit != 10 {
		t.Fatalf("unexpected result: status=%d limit=%d", rr.Code, stub.limit)
	}
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0]["payment_id"] != "pay_7" {
		t.Fatalf("unexpected items: %v", payload.Items)
	}

	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/admin/billing/followups?limit=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad limit: %d", rr.Code)
	}
}

func TestAdminBillingResolveOnce(t *testing.T) {
	stub := &followupsStub{resolved: map[string]string{}}
	h := NewAdminBillingHandler(stub, nil)
	r := chi.NewRouter()
	r.Post("/admin/billing/followups/{id}/resolve", h.Resolve)

	for i, want := range []int{http.StatusNoContent, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/admin/billing/followups/evt-1/resolve", strings.NewReader(`{"resolution":"refunded manually"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("resolve #%d: got %d want %d", i+1, rr.Code, want)
		}
	}
	if stub.resolved["evt-1"] != "refunded manually" {
		t.Fatalf("unexpected resolutions: %v", stub.resolved)
	}
}
