package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	paymentsvc "github.com/praneeth552/Jobfinder/internal/services/payments"
	"github.com/praneeth552/Jobfinder/internal/transport/http/dto"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

const (
	maxWebhookBody  = 1 << 20
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type WebhookIngestor interface {
	Handle(ctx context.Context, d paymentsvc.Delivery) (paymentsvc.Result, error)
}

type WebhookHandler struct {
	ingestor WebhookIngestor
	logger   *zap.Logger
}

func NewWebhookHandler(ingestor WebhookIngestor, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{ingestor: ingestor, logger: logger}
}

func (h *WebhookHandler) Razorpay(w http.ResponseWriter, r *http.Request) {
	if h.ingestor == nil {
		writeInternal(w, "WEBHOOK_UNAVAILABLE", "webhook ingestor is unavailable")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: "webhook payload is too large",
			})
			return
		}
		writeBadRequest(w, "INVALID_PAYLOAD", "failed to read webhook payload")
		return
	}

	res, err := h.ingestor.Handle(r.Context(), paymentsvc.Delivery{
		Body:      body,
		Signature: r.Header.Get(signatureHeader),
		EventID:   r.Header.Get(eventIDHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrWebhookSecretMissing):
			h.logger.Error("razorpay webhook secret is not configured")
			writeInternal(w, "WEBHOOK_SECRET_MISSING", "webhook secret is not configured")
		case errors.Is(err, paymentsvc.ErrMissingSignature):
			writeBadRequest(w, "MISSING_SIGNATURE", "signature header is required")
		case errors.Is(err, paymentsvc.ErrInvalidSignature):
			h.logger.Warn("razorpay webhook signature mismatch")
			writeBadRequest(w, "INVALID_SIGNATURE", "invalid webhook signature")
		case errors.Is(err, paymentsvc.ErrMalformedPayload):
			writeBadRequest(w, "INVALID_PAYLOAD", "invalid webhook payload")
		default:
			h.logger.Error("razorpay webhook processing failed",
				zap.Error(err),
				zap.String("event", string(res.Event)),
				zap.String("subscription_id", res.SubscriptionID),
			)
			writeInternal(w, "WEBHOOK_PROCESSING_FAILED", "failed to process webhook")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.WebhookAckResponse{Status: "ok"})
}
