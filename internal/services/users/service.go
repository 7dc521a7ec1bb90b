package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrPendingDeletion = errors.New("account is pending deletion")
)

type Store interface {
	FindByID(ctx context.Context, id string) (model.User, bool, error)
}

type Reconciler interface {
	ReconcileOnRead(ctx context.Context, user model.User) (model.User, error)
}

// Service loads the user behind an authenticated request. Every load goes
// through the real-time reconciler, so callers never see lapsed pro access.
type Service struct {
	store      Store
	reconciler Reconciler
	logger     *zap.Logger
}

func NewService(store Store, reconciler Reconciler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, reconciler: reconciler, logger: logger}
}

func (s *Service) Load(ctx context.Context, userID string) (model.User, error) {
	if s.store == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, found, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return model.User{}, ErrNotFound
	}

	if s.reconciler != nil {
		user, err = s.reconciler.ReconcileOnRead(ctx, user)
		if err != nil {
			return model.User{}, err
		}
	}

	if rules.FromUser(user).PendingDeletion() {
		return model.User{}, ErrPendingDeletion
	}
	return user, nil
}

// DeletionDeadline is when a pending deletion becomes final.
func DeletionDeadline(user model.User, grace time.Duration) *time.Time {
	requested := user.DeletionRequestedAt.Ptr()
	if requested == nil {
		return nil
	}
	deadline := requested.Add(grace)
	return &deadline
}
