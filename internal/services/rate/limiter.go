package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	"github.com/praneeth552/Jobfinder/internal/metrics"
)

var ErrGenerationLimited = errors.New("generation rate limited")

type GenerationStore interface {
	LatestGeneratedAt(ctx context.Context, userID string) (*time.Time, error)
}

type Limiter struct {
	store  GenerationStore
	policy rules.Policy
	now    func() time.Time
}

func NewLimiter(store GenerationStore, policy rules.Policy) *Limiter {
	return &Limiter{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Check evaluates the user's tier at call time, so a lapsed pro user is
// held to the free interval.
func (l *Limiter) Check(ctx context.Context, user model.User) (rules.GenerationDecision, error) {
	if user.ID.IsZero() {
		return rules.GenerationDecision{}, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return rules.GenerationDecision{}, fmt.Errorf("generation store is nil")
	}

	last, err := l.store.LatestGeneratedAt(ctx, user.HexID())
	if err != nil {
		return rules.GenerationDecision{}, err
	}

	now := l.now().UTC()
	isPro := rules.IsPro(&user, now, l.policy)
	decision := rules.CanGenerate(isPro, last, now, l.policy)

	result := "allowed"
	if !decision.Allowed {
		result = "limited"
	}
	metrics.GenerationDecisionsTotal.WithLabelValues(tier(isPro), result).Inc()
	return decision, nil
}

// Allow is Check with a denial turned into ErrGenerationLimited.
func (l *Limiter) Allow(ctx context.Context, user model.User) (rules.GenerationDecision, error) {
	decision, err := l.Check(ctx, user)
	if err != nil {
		return decision, err
	}
	if !decision.Allowed {
		return decision, ErrGenerationLimited
	}
	return decision, nil
}

func tier(isPro bool) string {
	if isPro {
		return "pro"
	}
	return "free"
}
