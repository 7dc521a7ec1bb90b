package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

type EntitlementsHandler struct {
	entitlements EntitlementReader
	eligibility  GenerationEligibility
	logger       *zap.Logger
}

func NewEntitlementsHandler(entitlements EntitlementReader, eligibility GenerationEligibility, logger *zap.Logger) *EntitlementsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntitlementsHandler{
		entitlements: entitlements,
		eligibility:  eligibility,
		logger:       logger,
	}
}

func (h *EntitlementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.entitlements == nil || h.eligibility == nil {
		writeInternal(w, "ENTITLEMENTS_UNAVAILABLE", "entitlements are unavailable")
		return
	}

	snap := h.entitlements.Snapshot(user)
	decision, err := h.eligibility.Eligibility(r.Context(), user)
	if err != nil {
		h.logger.Error("generation eligibility lookup failed", zap.Error(err), zap.String("user_id", user.HexID()))
		writeInternal(w, "INTERNAL_ERROR", "failed to load entitlements")
		return
	}

	resp := dto.EntitlementsResponse{
		IsPro:                  snap.IsPro,
		PlanType:               string(snap.PlanType),
		AccessUntil:            snap.AccessUntil,
		GenerationIntervalDays: decision.IntervalDays,
		CanGenerate:            decision.Allowed,
		IntegrationsEnabled:    snap.IsPro && user.SheetsEnabled,
	}
	if !decision.Allowed {
		resp.NextGenerationAllowedAt = decision.NextAllowedAt
	}

	httperrors.Write(w, http.StatusOK, resp)
}
