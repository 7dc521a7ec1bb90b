package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	"github.com/praneeth552/Jobfinder/internal/infra/razorpay"
)

var (
	ErrAlreadyPro         = errors.New("user already has pro access")
	ErrNoSubscription     = errors.New("user has no subscription")
	ErrAlreadyCancelled   = errors.New("subscription already cancelled")
	ErrBillingUnavailable = errors.New("billing provider unavailable")
)

type PatchStore interface {
	ApplyPatch(ctx context.Context, id primitive.ObjectID, patch rules.Patch, now time.Time) (bool, error)
}

type BillingProvider interface {
	Configured() bool
	KeyID() string
	CreateCustomer(ctx context.Context, name, email string) (string, error)
	CreateSubscription(ctx context.Context, planID, customerID string, totalCount int, notes map[string]string) (razorpay.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (razorpay.Subscription, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (razorpay.Subscription, error)
}

type Config struct {
	PlanID     string
	TotalCount int
}

type CreateResult struct {
	SubscriptionID string
	KeyID          string
	ShortURL       string
}

// Service starts and cancels provider subscriptions. Entitlement changes
// that follow from them arrive through webhooks, not from here.
type Service struct {
	users    PatchStore
	provider BillingProvider
	cfg      Config
	policy   rules.Policy
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(users PatchStore, provider BillingProvider, cfg Config, policy rules.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TotalCount <= 0 {
		cfg.TotalCount = 12
	}
	return &Service{
		users:    users,
		provider: provider,
		cfg:      cfg,
		policy:   policy,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) CreateProSubscription(ctx context.Context, user model.User) (CreateResult, error) {
	if s.provider == nil || !s.provider.Configured() || strings.TrimSpace(s.cfg.PlanID) == "" {
		return CreateResult{}, ErrBillingUnavailable
	}
	if rules.IsPro(&user, s.now().UTC(), s.policy) {
		return CreateResult{}, ErrAlreadyPro
	}

	customerID := user.CustomerID()
	if customerID == "" {
		id, err := s.provider.CreateCustomer(ctx, user.Name, user.Email)
		if err != nil {
			return CreateResult{}, fmt.Errorf("%w: %v", ErrBillingUnavailable, err)
		}
		customerID = id
	}

	sub, err := s.provider.CreateSubscription(ctx, s.cfg.PlanID, customerID, s.cfg.TotalCount, map[string]string{
		"user_id": user.HexID(),
		"email":   user.Email,
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: %v", ErrBillingUnavailable, err)
	}
	if sub.ID == "" {
		return CreateResult{}, fmt.Errorf("%w: subscription id missing", ErrBillingUnavailable)
	}

	if _, err := s.users.ApplyPatch(ctx, user.ID, rules.StartSubscription(sub.ID, customerID), s.now()); err != nil {
		return CreateResult{}, fmt.Errorf("store subscription reference: %w", err)
	}

	s.logger.Info("pro subscription created",
		zap.String("user_id", user.HexID()),
		zap.String("subscription_id", sub.ID),
	)
	return CreateResult{SubscriptionID: sub.ID, KeyID: s.provider.KeyID(), ShortURL: sub.ShortURL}, nil
}

func (s *Service) CancelSubscription(ctx context.Context, user model.User) error {
	subscriptionID := user.SubscriptionID()
	if subscriptionID == "" {
		return ErrNoSubscription
	}
	if user.PlanStatus != nil && *user.PlanStatus == enums.PlanStatusCancelled {
		return ErrAlreadyCancelled
	}
	if s.provider == nil || !s.provider.Configured() {
		return ErrBillingUnavailable
	}

	if _, err := s.provider.CancelSubscription(ctx, subscriptionID); err != nil {
		return fmt.Errorf("%w: %v", ErrBillingUnavailable, err)
	}

	s.logger.Info("pro subscription cancellation requested",
		zap.String("user_id", user.HexID()),
		zap.String("subscription_id", subscriptionID),
	)
	return nil
}

// Inspect reads the provider's view of a subscription for operators.
func (s *Service) Inspect(ctx context.Context, subscriptionID string) (razorpay.Subscription, error) {
	if s.provider == nil || !s.provider.Configured() {
		return razorpay.Subscription{}, ErrBillingUnavailable
	}
	sub, err := s.provider.FetchSubscription(ctx, strings.TrimSpace(subscriptionID))
	if err != nil {
		return razorpay.Subscription{}, fmt.Errorf("%w: %v", ErrBillingUnavailable, err)
	}
	return sub, nil
}
