package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

// Loader returns an already reconciled user.
type Loader interface {
	Load(ctx context.Context, userID string) (model.User, error)
}

type Service struct {
	users  Loader
	policy rules.Policy
	now    func() time.Time
}

type Snapshot struct {
	UserID             string
	IsPro              bool
	PlanType           enums.PlanType
	PlanStatus         enums.PlanStatus
	SubscriptionStatus enums.SubscriptionStatus
	ValidUntil         *time.Time
	AccessUntil        *time.Time
	HasSubscription    bool
}

func NewService(users Loader, policy rules.Policy) *Service {
	return &Service{
		users:  users,
		policy: policy,
		now:    time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrValidation
	}
	if s.users == nil {
		return Snapshot{}, fmt.Errorf("user loader is nil")
	}

	user, err := s.users.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(user), nil
}

func (s *Service) Snapshot(user model.User) Snapshot {
	now := s.now().UTC()
	e := rules.FromUser(user)

	snap := Snapshot{
		UserID:             user.HexID(),
		IsPro:              e.IsPro(now, s.policy),
		PlanType:           e.PlanType,
		PlanStatus:         e.PlanStatus,
		SubscriptionStatus: e.SubscriptionStatus,
		ValidUntil:         e.ValidUntil.Ptr(),
		HasSubscription:    e.SubscriptionID != "",
	}
	if snap.IsPro && snap.ValidUntil != nil {
		until := *snap.ValidUntil
		if e.SubscriptionStatus == enums.SubscriptionStatusPastDue {
			until = until.Add(s.policy.PastDueGrace)
		}
		snap.AccessUntil = &until
	}
	return snap
}

func (s *Service) IsPro(user model.User) bool {
	return rules.IsPro(&user, s.now().UTC(), s.policy)
}
