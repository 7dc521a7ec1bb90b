package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	pgrepo "github.com/praneeth552/Jobfinder/internal/repo/postgres"
	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

const defaultFollowupLimit = 50

type BillingFollowups interface {
	ListNeedsReview(ctx context.Context, limit int) ([]model.BillingEvent, error)
	Resolve(ctx context.Context, id, resolution string, at time.Time) error
}

// AdminBillingHandler exposes journaled webhook events that need a human,
// such as refunds that cannot be mapped back to a user.
type AdminBillingHandler struct {
	followups BillingFollowups
	logger    *zap.Logger
	now       func() time.Time
}

func NewAdminBillingHandler(followups BillingFollowups, logger *zap.Logger) *AdminBillingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminBillingHandler{followups: followups, logger: logger, now: time.Now}
}

func (h *AdminBillingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.followups == nil {
		writeUnavailable(w, "JOURNAL_UNAVAILABLE", "billing journal is unavailable")
		return
	}

	limit := defaultFollowupLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	events, err := h.followups.ListNeedsReview(r.Context(), limit)
	if err != nil {
		h.logger.Error("list billing followups failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to list billing followups")
		return
	}

	items := make([]dto.BillingFollowupResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, dto.BillingFollowupResponse{
			ID:              ev.ID,
			ProviderEventID: ev.ProviderEventID,
			Event:           string(ev.Event),
			SubscriptionID:  ev.SubscriptionID,
			PaymentID:       ev.PaymentID,
			Outcome:         string(ev.Outcome),
			ReceivedAt:      ev.ReceivedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.BillingFollowupsResponse{Items: items})
}

func (h *AdminBillingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h.followups == nil {
		writeUnavailable(w, "JOURNAL_UNAVAILABLE", "billing journal is unavailable")
		return
	}

	var req dto.BillingFollowupResolveRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Resolution) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "resolution is required")
		return
	}

	err := h.followups.Resolve(r.Context(), chi.URLParam(r, "id"), req.Resolution, h.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrBillingEventNotFound):
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "NOT_FOUND", Message: "billing event not found"})
		case errors.Is(err, pgrepo.ErrAlreadyResolved):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "ALREADY_RESOLVED", Message: "billing event already resolved"})
		default:
			h.logger.Error("resolve billing followup failed", zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to resolve billing followup")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
