package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	entsvc "github.com/praneeth552/Jobfinder/internal/services/entitlements"
	subsvc "github.com/praneeth552/Jobfinder/internal/services/subscriptions"
	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

type SubscriptionService interface {
	CreateProSubscription(ctx context.Context, user model.User) (subsvc.CreateResult, error)
	CancelSubscription(ctx context.Context, user model.User) error
}

type EntitlementReader interface {
	Snapshot(user model.User) entsvc.Snapshot
}

type SubscriptionHandler struct {
	subscriptions SubscriptionService
	entitlements  EntitlementReader
	logger        *zap.Logger
}

func NewSubscriptionHandler(subscriptions SubscriptionService, entitlements EntitlementReader, logger *zap.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		entitlements:  entitlements,
		logger:        logger,
	}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.subscriptions == nil {
		writeUnavailable(w, "BILLING_UNAVAILABLE", "billing is unavailable")
		return
	}

	result, err := h.subscriptions.CreateProSubscription(r.Context(), user)
	if err != nil {
		h.writeError(w, err, "failed to create subscription")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SubscriptionCreateResponse{
		SubscriptionID: result.SubscriptionID,
		KeyID:          result.KeyID,
		ShortURL:       result.ShortURL,
	})
}

// Cancel asks the provider to stop renewal. Access lasts until the paid
// period ends and the state change arrives via webhook.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.subscriptions == nil {
		writeUnavailable(w, "BILLING_UNAVAILABLE", "billing is unavailable")
		return
	}

	if err := h.subscriptions.CancelSubscription(r.Context(), user); err != nil {
		h.writeError(w, err, "failed to cancel subscription")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SubscriptionCancelResponse{Status: "cancellation_requested"})
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.entitlements == nil {
		writeInternal(w, "ENTITLEMENTS_UNAVAILABLE", "entitlements are unavailable")
		return
	}

	snap := h.entitlements.Snapshot(user)
	httperrors.Write(w, http.StatusOK, dto.SubscriptionStatusResponse{
		PlanType:               string(snap.PlanType),
		IsPro:                  snap.IsPro,
		PlanStatus:             string(snap.PlanStatus),
		SubscriptionStatus:     string(snap.SubscriptionStatus),
		SubscriptionValidUntil: snap.ValidUntil,
		AccessUntil:            snap.AccessUntil,
		HasSubscription:        snap.HasSubscription,
	})
}

func (h *SubscriptionHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, subsvc.ErrAlreadyPro):
		httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: "ALREADY_PRO", Message: "user already has pro access"})
	case errors.Is(err, subsvc.ErrAlreadyCancelled):
		httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: "ALREADY_CANCELLED", Message: "subscription is already cancelled"})
	case errors.Is(err, subsvc.ErrNoSubscription):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "NO_SUBSCRIPTION", Message: "no active subscription"})
	case errors.Is(err, subsvc.ErrBillingUnavailable):
		writeUnavailable(w, "BILLING_UNAVAILABLE", "billing is unavailable")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
