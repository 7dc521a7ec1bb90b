package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	authsvc "github.com/praneeth552/Jobfinder/internal/services/auth"
	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

type GenerationEligibility interface {
	Eligibility(ctx context.Context, user model.User) (rules.GenerationDecision, error)
}

type MeHandler struct {
	entitlements EntitlementReader
	eligibility  GenerationEligibility
	logger       *zap.Logger
}

func NewMeHandler(entitlements EntitlementReader, eligibility GenerationEligibility, logger *zap.Logger) *MeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeHandler{
		entitlements: entitlements,
		eligibility:  eligibility,
		logger:       logger,
	}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	resp := dto.MeResponse{
		ID:                     user.HexID(),
		Email:                  user.Email,
		Name:                   user.Name,
		PlanType:               string(user.PlanType),
		SubscriptionValidUntil: user.SubscriptionValidUntil.Ptr(),
		SheetsEnabled:          user.SheetsEnabled,
		Preferences: dto.MePreferencesObject{
			Roles:           user.Preferences.Roles,
			Locations:       user.Preferences.Locations,
			TechStack:       user.Preferences.TechStack,
			ExperienceLevel: user.Preferences.ExperienceLevel,
			JobType:         user.Preferences.JobType,
			WorkArrangement: user.Preferences.WorkArrangement,
		},
	}
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		resp.Role = identity.Role
	}
	if user.SubscriptionStatus != nil {
		resp.SubscriptionStatus = string(*user.SubscriptionStatus)
	}
	if h.entitlements != nil {
		resp.IsPro = h.entitlements.Snapshot(user).IsPro
	}
	resp.NextGenerationAllowedAt = h.nextGeneration(r.Context(), user)

	httperrors.Write(w, http.StatusOK, resp)
}

// nextGeneration is informational. A failed lookup leaves it empty.
func (h *MeHandler) nextGeneration(ctx context.Context, user model.User) *time.Time {
	if h.eligibility == nil {
		return nil
	}
	decision, err := h.eligibility.Eligibility(ctx, user)
	if err != nil {
		h.logger.Warn("generation eligibility lookup failed", zap.Error(err), zap.String("user_id", user.HexID()))
		return nil
	}
	if decision.Allowed {
		return nil
	}
	return decision.NextAllowedAt
}
