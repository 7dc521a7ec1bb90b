package subscriptions

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	"github.com/praneeth552/Jobfinder/internal/metrics"
)

const (
	SourceRealtime = "realtime"
	SourceSweep    = "sweep"
)

type Downgrader interface {
	ApplyDowngrade(ctx context.Context, id primitive.ObjectID, patch rules.Patch, now time.Time) (bool, error)
}

// Reconciler moves lapsed pro users back to free. The same transition is
// used on the request path and by the daily sweep.
type Reconciler struct {
	store  Downgrader
	policy rules.Policy
	now    func() time.Time
	logger *zap.Logger
}

func NewReconciler(store Downgrader, policy rules.Policy, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		policy: policy,
		now:    time.Now,
		logger: logger,
	}
}

// ReconcileOnRead runs synchronously before an authenticated request sees
// the user. A failed write fails the request rather than serving stale access.
func (r *Reconciler) ReconcileOnRead(ctx context.Context, user model.User) (model.User, error) {
	next, _, err := r.Downgrade(ctx, user, SourceRealtime)
	return next, err
}

// Downgrade applies the expiry transition when the user has lapsed. The
// returned record reflects the persisted state.
func (r *Reconciler) Downgrade(ctx context.Context, user model.User, source string) (model.User, bool, error) {
	now := r.now().UTC()
	patch, lapsed := rules.Expire(rules.FromUser(user), now, r.policy)
	if !lapsed {
		return user, false, nil
	}
	if r.store == nil {
		return user, false, fmt.Errorf("user store is nil")
	}

	modified, err := r.store.ApplyDowngrade(ctx, user.ID, patch, now)
	if err != nil {
		return user, false, fmt.Errorf("downgrade expired user: %w", err)
	}

	if modified {
		metrics.DowngradesTotal.WithLabelValues(source).Inc()
		r.logger.Info("pro subscription expired, user downgraded",
			zap.String("user_id", user.HexID()),
			zap.String("source", source),
			zap.Time("valid_until", user.SubscriptionValidUntil.Effective()),
		)
	}
	return patch.ApplyToUser(user), modified, nil
}
