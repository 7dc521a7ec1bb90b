package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

type storeStub struct {
	users map[string]model.User
	err   error
}

func (s *storeStub) FindByID(_ context.Context, id string) (model.User, bool, error) {
	if s.err != nil {
		return model.User{}, false, s.err
	}
	u, ok := s.users[id]
	return u, ok, nil
}

type reconcilerStub struct {
	calls int
	err   error
}

func (r *reconcilerStub) ReconcileOnRead(_ context.Context, user model.User) (model.User, error) {
	r.calls++
	if r.err != nil {
		return model.User{}, r.err
	}
	user.PlanType = enums.PlanTypeFree
	return user, nil
}

func TestLoadReconcilesEveryRead(t *testing.T) {
	id := primitive.NewObjectID()
	store := &storeStub{users: map[string]model.User{id.Hex(): {ID: id, PlanType: enums.PlanTypePro}}}
	reconciler := &reconcilerStub{}
	svc := NewService(store, reconciler, nil)

	for i := 0; i < 2; i++ {
		user, err := svc.Load(context.Background(), id.Hex())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if user.PlanType != enums.PlanTypeFree {
			t.Fatalf("reconciled record should be returned")
		}
	}
	if reconciler.calls != 2 {
		t.Fatalf("expected reconcile on every load, got %d", reconciler.calls)
	}
}

func TestLoadNotFound(t *testing.T) {
	svc := NewService(&storeStub{users: map[string]model.User{}}, &reconcilerStub{}, nil)
	if _, err := svc.Load(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRejectsPendingDeletion(t *testing.T) {
	id := primitive.NewObjectID()
	pending := enums.PlanStatusPendingDeletion
	store := &storeStub{users: map[string]model.User{id.Hex(): {ID: id, PlanStatus: &pending}}}
	svc := NewService(store, &reconcilerStub{}, nil)

	if _, err := svc.Load(context.Background(), id.Hex()); !errors.Is(err, ErrPendingDeletion) {
		t.Fatalf("expected ErrPendingDeletion, got %v", err)
	}
}

func TestLoadPropagatesReconcileFailure(t *testing.T) {
	id := primitive.NewObjectID()
	store := &storeStub{users: map[string]model.User{id.Hex(): {ID: id}}}
	svc := NewService(store, &reconcilerStub{err: errors.New("write failed")}, nil)

	if _, err := svc.Load(context.Background(), id.Hex()); err == nil {
		t.Fatalf("expected reconcile error")
	}
}

func TestDeletionDeadline(t *testing.T) {
	requested := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := DeletionDeadline(model.User{DeletionRequestedAt: model.At(requested)}, 30*24*time.Hour)
	if got == nil || !got.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected deadline: %v", got)
	}
	if DeletionDeadline(model.User{}, time.Hour) != nil {
		t.Fatalf("no request should mean no deadline")
	}
}
