package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	ratesvc "github.com/praneeth552/Jobfinder/internal/services/rate"
	recsvc "github.com/praneeth552/Jobfinder/internal/services/recommendations"
	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

type RecommendationService interface {
	Eligibility(ctx context.Context, user model.User) (rules.GenerationDecision, error)
	Generate(ctx context.Context, user model.User) (recsvc.Result, error)
	Latest(ctx context.Context, user model.User) (model.Recommendation, bool, error)
}

type RecommendationsHandler struct {
	service RecommendationService
	logger  *zap.Logger
}

func NewRecommendationsHandler(service RecommendationService, logger *zap.Logger) *RecommendationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationsHandler{service: service, logger: logger}
}

func (h *RecommendationsHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "RECOMMENDATIONS_UNAVAILABLE", "recommendations are unavailable")
		return
	}

	decision, err := h.service.Eligibility(r.Context(), user)
	if err != nil {
		h.logger.Error("generation eligibility failed", zap.Error(err), zap.String("user_id", user.HexID()))
		writeInternal(w, "INTERNAL_ERROR", "failed to check eligibility")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EligibilityResponse{
		CanGenerate:    decision.Allowed,
		RetryAfterDays: decision.RetryAfterDays,
		IntervalDays:   decision.IntervalDays,
		NextAllowedAt:  decision.NextAllowedAt,
	})
}

func (h *RecommendationsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "RECOMMENDATIONS_UNAVAILABLE", "recommendations are unavailable")
		return
	}

	res, err := h.service.Generate(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, ratesvc.ErrGenerationLimited):
			w.Header().Set("Retry-After", strconv.Itoa(res.Decision.RetryAfterDays*24*60*60))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:           "GENERATION_RATE_LIMITED",
				Message:        "you can generate new recommendations in " + strconv.Itoa(res.Decision.RetryAfterDays) + " day(s)",
				RetryAfterDays: res.Decision.RetryAfterDays,
				NextAllowedAt:  res.Decision.NextAllowedAt,
			})
		case errors.Is(err, recsvc.ErrNoProfile):
			writeBadRequest(w, "PREFERENCES_REQUIRED", "set your job preferences first")
		case errors.Is(err, recsvc.ErrNoJobs):
			writeUnavailable(w, "NO_JOBS_AVAILABLE", "no job listings are available yet")
		case errors.Is(err, recsvc.ErrGeneratorDisabled):
			writeUnavailable(w, "RECOMMENDATIONS_UNAVAILABLE", "recommendations are unavailable")
		default:
			h.logger.Error("generate recommendations failed", zap.Error(err), zap.String("user_id", user.HexID()))
			writeInternal(w, "INTERNAL_ERROR", "failed to generate recommendations")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, recommendationsResponse(res.Recommendation, res.Decision.NextAllowedAt))
}

func (h *RecommendationsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "RECOMMENDATIONS_UNAVAILABLE", "recommendations are unavailable")
		return
	}

	rec, found, err := h.service.Latest(r.Context(), user)
	if err != nil {
		h.logger.Error("load recommendations failed", zap.Error(err), zap.String("user_id", user.HexID()))
		writeInternal(w, "INTERNAL_ERROR", "failed to load recommendations")
		return
	}
	if !found {
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "NO_RECOMMENDATIONS", Message: "no recommendations generated yet"})
		return
	}

	httperrors.Write(w, http.StatusOK, recommendationsResponse(rec, nil))
}

func recommendationsResponse(rec model.Recommendation, next *time.Time) dto.RecommendationsResponse {
	jobs := make([]dto.RecommendedJobResponse, 0, len(rec.RecommendedJobs))
	for _, job := range rec.RecommendedJobs {
		jobs = append(jobs, dto.RecommendedJobResponse{
			Title:      job.Title,
			Company:    job.Company,
			Location:   job.Location,
			MatchScore: job.MatchScore,
			Reason:     job.Reason,
			JobURL:     job.JobURL,
		})
	}
	return dto.RecommendationsResponse{
		RecommendedJobs:         jobs,
		GeneratedAt:             rec.GeneratedAt,
		NextGenerationAllowedAt: next,
	}
}
