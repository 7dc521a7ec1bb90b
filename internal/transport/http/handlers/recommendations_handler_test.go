package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	ratesvc "github.com/praneeth552/Jobfinder/internal/services/rate"
	recsvc "github.com/praneeth552/Jobfinder/internal/services/recommendations"
	userssvc "github.com/praneeth552/Jobfinder/internal/services/users"
)

type recommendationServiceStub struct {
	decision rules.GenerationDecision
	err      error
}

func (s *recommendationServiceStub) Eligibility(context.Context, model.User) (rules.GenerationDecision, error) {
	return s.decision, nil
}

func (s *recommendationServiceStub) Generate(context.Context, model.User) (recsvc.Result, error) {
	if s.err != nil {
		return recsvc.Result{Decision: s.decision}, s.err
	}
	return recsvc.Result{Recommendation: model.Recommendation{
		RecommendedJobs: []model.RecommendedJob{{Title: "Platform Engineer", MatchScore: 88}},
		GeneratedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}}, nil
}

func (s *recommendationServiceStub) Latest(context.Context, model.User) (model.Recommendation, bool, error) {
	return model.Recommendation{}, false, nil
}

func withUser(req *http.Request) *http.Request {
	user := model.User{ID: primitive.NewObjectID(), Email: "dev@example.com", PlanType: enums.PlanTypeFree}
	return req.WithContext(userssvc.WithUser(req.Context(), user))
}

func TestGenerateRateLimitedResponse(t *testing.T) {
	next := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	h := NewRecommendationsHandler(&recommendationServiceStub{
		decision: rules.GenerationDecision{RetryAfterDays: 5, IntervalDays: 30, NextAllowedAt: &next},
		err:      ratesvc.ErrGenerationLimited,
	}, nil)

	rr := httptest.NewRecorder()
	h.Generate(rr, withUser(httptest.NewRequest(http.MethodPost, "/generate_recommendations", nil)))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") != "432000" {
		t.Fatalf("unexpected Retry-After: %q", rr.Header().Get("Retry-After"))
	}

	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if raw["code"] != "GENERATION_RATE_LIMITED" || int(raw["retry_after_days"].(float64)) != 5 {
		t.Fatalf("unexpected body: %v", raw)
	}
	if raw["next_allowed_at"] != "2026-03-15T09:00:00Z" {
		t.Fatalf("unexpected next_allowed_at: %v", raw["next_allowed_at"])
	}
}

func TestGenerateRequiresUser(t *testing.T) {
	h := NewRecommendationsHandler(&recommendationServiceStub{}, nil)

	rr := httptest.NewRecorder()
	h.Generate(rr, httptest.NewRequest(http.MethodPost, "/generate_recommendations", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestGenerateSuccess(t *testing.T) {
	h := NewRecommendationsHandler(&recommendationServiceStub{}, nil)

	rr := httptest.NewRecorder()
	h.Generate(rr, withUser(httptest.NewRequest(http.MethodPost, "/generate_recommendations", nil)))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	jobs, ok := raw["recommended_jobs"].([]any)
	if !ok || len(jobs) != 1 {
		t.Fatalf("unexpected recommended_jobs: %v", raw["recommended_jobs"])
	}
}

func TestEligibilityResponseShape(t *testing.T) {
	h := NewRecommendationsHandler(&recommendationServiceStub{
		decision: rules.GenerationDecision{Allowed: true, IntervalDays: 7},
	}, nil)

	rr := httptest.NewRecorder()
	h.Eligibility(rr, withUser(httptest.NewRequest(http.MethodGet, "/recommendations/eligibility", nil)))

	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if raw["can_generate"] != true || int(raw["interval_days"].(float64)) != 7 {
		t.Fatalf("unexpected body: %v", raw)
	}
}
