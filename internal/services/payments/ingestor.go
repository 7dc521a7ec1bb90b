package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	"github.com/praneeth552/Jobfinder/internal/infra/razorpay"
	"github.com/praneeth552/Jobfinder/internal/metrics"
	"github.com/praneeth552/Jobfinder/internal/services/notifications"
)

var (
	ErrWebhookSecretMissing = errors.New("webhook secret is not configured")
	ErrMissingSignature     = errors.New("webhook signature is missing")
	ErrInvalidSignature     = errors.New("webhook signature is invalid")
	ErrMalformedPayload     = errors.New("webhook payload is malformed")
)

type SubscriptionStore interface {
	ApplyBySubscriptionID(ctx context.Context, subscriptionID string, patch rules.Patch, now time.Time) (model.User, bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, kind notifications.Kind, user model.User)
}

type Journal interface {
	Record(ctx context.Context, ev model.BillingEvent) (string, error)
}

type Verifier func(body []byte, signature, secret string) bool

// DefaultNotifyTimeout bounds the email sent from inside a webhook
// request so a slow mail provider cannot hold back the acknowledgement.
const DefaultNotifyTimeout = 3 * time.Second

type Ingestor struct {
	users         SubscriptionStore
	notifier      Notifier
	journal       Journal
	secret        string
	policy        rules.Policy
	verify        Verifier
	notifyTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

type Delivery struct {
	Body      []byte
	Signature string
	EventID   string
}

type Result struct {
	Event          enums.BillingEvent
	Outcome        enums.BillingEventOutcome
	SubscriptionID string
	UserID         string
}

func NewIngestor(users SubscriptionStore, notifier Notifier, journal Journal, secret string, policy rules.Policy, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		users:         users,
		notifier:      notifier,
		journal:       journal,
		secret:        secret,
		policy:        policy,
		verify:        razorpay.VerifyWebhookSignature,
		notifyTimeout: DefaultNotifyTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// SetNotifyTimeout overrides DefaultNotifyTimeout. Non-positive values
// are ignored.
func (i *Ingestor) SetNotifyTimeout(d time.Duration) {
	if d > 0 {
		i.notifyTimeout = d
	}
}

type webhookEnvelope struct {
	Event   enums.BillingEvent `json:"event"`
	Payload struct {
		Subscription *struct {
			ID     string `json:"id"`
			Entity *struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"subscription"`
		Payment *struct {
			Entity *struct {
				ID             string `json:"id"`
				SubscriptionID string `json:"subscription_id"`
			} `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity *struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

func (e webhookEnvelope) subscriptionID() string {
	if sub := e.Payload.Subscription; sub != nil {
		if sub.Entity != nil && sub.Entity.ID != "" {
			return sub.Entity.ID
		}
		if sub.ID != "" {
			return sub.ID
		}
	}
	if pay := e.Payload.Payment; pay != nil && pay.Entity != nil {
		return pay.Entity.SubscriptionID
	}
	return ""
}

func (e webhookEnvelope) paymentID() string {
	if r := e.Payload.Refund; r != nil && r.Entity != nil && r.Entity.PaymentID != "" {
		return r.Entity.PaymentID
	}
	if p := e.Payload.Payment; p != nil && p.Entity != nil {
		return p.Entity.ID
	}
	return ""
}

// Handle verifies and applies one delivery. Nothing is mutated unless the
// signature checks out against the configured secret.
func (i *Ingestor) Handle(ctx context.Context, d Delivery) (Result, error) {
	start := time.Now()

	if i.secret == "" {
		return Result{}, ErrWebhookSecretMissing
	}
	if d.Signature == "" {
		metrics.WebhookEventsTotal.WithLabelValues("unverified", "rejected").Inc()
		return Result{}, ErrMissingSignature
	}
	if !i.verify(d.Body, d.Signature, i.secret) {
		metrics.WebhookEventsTotal.WithLabelValues("unverified", "rejected").Inc()
		return Result{}, ErrInvalidSignature
	}

	var env webhookEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil || env.Event == "" {
		metrics.WebhookEventsTotal.WithLabelValues("malformed", "rejected").Inc()
		return Result{}, ErrMalformedPayload
	}

	now := i.now().UTC()
	res := Result{Event: env.Event, SubscriptionID: env.subscriptionID()}
	defer func() {
		metrics.WebhookDuration.WithLabelValues(string(res.Event)).Observe(time.Since(start).Seconds())
	}()

	var err error
	switch env.Event {
	case enums.BillingEventSubscriptionCharged:
		err = i.apply(ctx, &res, rules.Charge(now, i.policy), notifications.KindPaymentSucceeded, now)
	case enums.BillingEventSubscriptionCancelled:
		err = i.apply(ctx, &res, rules.Cancel(), notifications.KindSubscriptionCancelled, now)
	case enums.BillingEventSubscriptionHalted, enums.BillingEventPaymentFailed:
		err = i.apply(ctx, &res, rules.Halt(), notifications.KindPaymentFailed, now)
	case enums.BillingEventSubscriptionResumed:
		err = i.apply(ctx, &res, rules.Resume(), notifications.KindSubscriptionResumed, now)
	case enums.BillingEventRefundProcessed:
		res.Outcome = enums.BillingEventOutcomeNeedsReview
		i.logger.Warn("refund processed, manual follow-up required",
			zap.String("payment_id", env.paymentID()),
			zap.String("event_id", d.EventID),
		)
	default:
		res.Outcome = enums.BillingEventOutcomeIgnored
		i.logger.Info("ignoring unhandled webhook event", zap.String("event", string(env.Event)))
	}
	if err != nil {
		res.Outcome = enums.BillingEventOutcomeFailed
	}

	i.record(ctx, d, env, res, now)
	metrics.WebhookEventsTotal.WithLabelValues(string(res.Event), string(res.Outcome)).Inc()
	return res, err
}

func (i *Ingestor) apply(ctx context.Context, res *Result, patch rules.Patch, kind notifications.Kind, now time.Time) error {
	if res.SubscriptionID == "" {
		res.Outcome = enums.BillingEventOutcomeIgnored
		i.logger.Warn("webhook event without subscription reference", zap.String("event", string(res.Event)))
		return nil
	}

	user, found, err := i.users.ApplyBySubscriptionID(ctx, res.SubscriptionID, patch, now)
	if err != nil {
		return fmt.Errorf("apply %s: %w", res.Event, err)
	}
	if !found {
		res.Outcome = enums.BillingEventOutcomeUnknownTarget
		i.logger.Warn("no user for subscription",
			zap.String("event", string(res.Event)),
			zap.String("subscription_id", res.SubscriptionID),
		)
		return nil
	}

	res.UserID = user.HexID()
	res.Outcome = enums.BillingEventOutcomeApplied
	i.logger.Info("subscription updated",
		zap.String("event", string(res.Event)),
		zap.String("subscription_id", res.SubscriptionID),
		zap.String("user_id", res.UserID),
	)
	if i.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, i.notifyTimeout)
		i.notifier.Notify(notifyCtx, kind, user)
		cancel()
	}
	return nil
}

func (i *Ingestor) record(ctx context.Context, d Delivery, env webhookEnvelope, res Result, now time.Time) {
	if i.journal == nil {
		return
	}
	ev := model.BillingEvent{
		ProviderEventID: d.EventID,
		Event:           res.Event,
		SubscriptionID:  res.SubscriptionID,
		PaymentID:       env.paymentID(),
		UserID:          res.UserID,
		Outcome:         res.Outcome,
		NeedsReview:     res.Outcome == enums.BillingEventOutcomeNeedsReview,
		Payload:         json.RawMessage(d.Body),
		ReceivedAt:      now,
	}
	if _, err := i.journal.Record(context.WithoutCancel(ctx), ev); err != nil {
		i.logger.Error("journal billing event", zap.Error(err), zap.String("event", string(res.Event)))
	}
}
