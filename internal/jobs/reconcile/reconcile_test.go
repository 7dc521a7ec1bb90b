package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	redrepo "github.com/praneeth552/Jobfinder/internal/repo/redis"
	"github.com/praneeth552/Jobfinder/internal/services/notifications"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeUsers is shared by the reminder and sweep goroutines of Run.
type fakeUsers struct {
	mu         sync.Mutex
	users      []model.User
	renewalErr error
	sweepDelay time.Duration
}

func (f *fakeUsers) snapshot() []model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.User(nil), f.users...)
}

func (f *fakeUsers) get(i int) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[i]
}

func (f *fakeUsers) ForEachRenewalCandidate(_ context.Context, from, to time.Time, fn func(model.User) error) error {
	if f.renewalErr != nil {
		return f.renewalErr
	}
	for _, u := range f.snapshot() {
		vu := u.SubscriptionValidUntil.Effective()
		if u.PlanType != enums.PlanTypePro || u.SubscriptionStatus == nil || *u.SubscriptionStatus != enums.SubscriptionStatusActive {
			continue
		}
		if vu.After(from) && !vu.After(to) {
			if err := fn(u); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeUsers) ForEachExpiredPro(ctx context.Context, now time.Time, fn func(model.User) error) error {
	if f.sweepDelay > 0 {
		time.Sleep(f.sweepDelay)
	}
	for _, u := range f.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if u.PlanType == enums.PlanTypePro && u.SubscriptionValidUntil.Effective().Before(now) {
			if err := fn(u); err != nil {
				return err
			}
		}
	}
	return nil
}

// fakeReconciler persists downgrades back into fakeUsers.
type fakeReconciler struct {
	users *fakeUsers
	err   error
}

func (f *fakeReconciler) Downgrade(_ context.Context, user model.User, _ string) (model.User, bool, error) {
	if f.err != nil {
		return user, false, f.err
	}
	patch, lapsed := rules.Expire(rules.FromUser(user), fixedNow, rules.DefaultPolicy())
	if !lapsed {
		return user, false, nil
	}
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	for i := range f.users.users {
		if f.users.users[i].ID == user.ID {
			if f.users.users[i].PlanType != enums.PlanTypePro {
				return user, false, nil
			}
			f.users.users[i] = patch.ApplyToUser(f.users.users[i])
		}
	}
	return patch.ApplyToUser(user), true, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, _ notifications.Kind, user model.User) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, user.HexID())
	return nil
}

func proUser(status enums.SubscriptionStatus, validUntil time.Time) model.User {
	planStatus := enums.PlanStatusActive
	return model.User{
		ID:                     primitive.NewObjectID(),
		Email:                  "user@example.com",
		PlanType:               enums.PlanTypePro,
		PlanStatus:             &planStatus,
		SubscriptionStatus:     &status,
		SubscriptionValidUntil: model.At(validUntil),
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestJob(users *fakeUsers, notifier *fakeNotifier) *Job {
	job := New(users, &fakeReconciler{users: users}, notifier, Config{}, nil)
	job.now = func() time.Time { return fixedNow }
	return job
}

func TestRunRemindersOncePerPeriod(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	due := proUser(enums.SubscriptionStatusActive, fixedNow.Add(3*24*time.Hour))
	later := proUser(enums.SubscriptionStatusActive, fixedNow.Add(10*24*time.Hour))
	cancelled := proUser(enums.SubscriptionStatusCancelled, fixedNow.Add(2*24*time.Hour))
	users := &fakeUsers{users: []model.User{due, later, cancelled}}
	notifier := &fakeNotifier{}

	job := newTestJob(users, notifier)
	job.AttachReminderLedger(redrepo.NewReminderRepo(client, 0))

	for i := 0; i < 2; i++ {
		if _, err := job.RunReminders(context.Background()); err != nil {
			t.Fatalf("run reminders #%d: %v", i+1, err)
		}
	}

	if len(notifier.sent) != 1 || notifier.sent[0] != due.HexID() {
		t.Fatalf("expected one reminder for the due user, got %v", notifier.sent)
	}
}

func TestRunRemindersSendsWhenLedgerUnavailable(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer func() { _ = client.Close() }()
	mr.Close()

	users := &fakeUsers{users: []model.User{proUser(enums.SubscriptionStatusActive, fixedNow.Add(24*time.Hour))}}
	notifier := &fakeNotifier{}
	job := newTestJob(users, notifier)
	job.AttachReminderLedger(redrepo.NewReminderRepo(client, 0))

	report, err := job.RunReminders(context.Background())
	if err != nil {
		t.Fatalf("run reminders: %v", err)
	}
	if report.RemindersSent != 1 {
		t.Fatalf("expected reminder despite ledger failure, got %+v", report)
	}
}

func TestRunRemindersFailedSendCanRetry(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	users := &fakeUsers{users: []model.User{proUser(enums.SubscriptionStatusActive, fixedNow.Add(24*time.Hour))}}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	job := newTestJob(users, notifier)
	job.AttachReminderLedger(redrepo.NewReminderRepo(client, 0))

	report, err := job.RunReminders(context.Background())
	if err != nil {
		t.Fatalf("run reminders: %v", err)
	}
	if report.RemindersFailed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	notifier.err = nil
	report, err = job.RunReminders(context.Background())
	if err != nil {
		t.Fatalf("run reminders retry: %v", err)
	}
	if report.RemindersSent != 1 {
		t.Fatalf("expected retry to send, got %+v", report)
	}
}

func TestRunSweepDowngradesAndIsRerunnable(t *testing.T) {
	expired := proUser(enums.SubscriptionStatusCancelled, fixedNow.Add(-time.Hour))
	inGrace := proUser(enums.SubscriptionStatusPastDue, fixedNow.Add(-24*time.Hour))
	current := proUser(enums.SubscriptionStatusActive, fixedNow.Add(24*time.Hour))
	users := &fakeUsers{users: []model.User{expired, inGrace, current}}
	job := newTestJob(users, &fakeNotifier{})

	report, err := job.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if report.Downgraded != 1 || report.SweepSkipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if users.get(0).PlanType != enums.PlanTypeFree {
		t.Fatalf("expected expired user downgraded")
	}
	if users.get(1).PlanType != enums.PlanTypePro {
		t.Fatalf("past due user inside grace must stay pro")
	}

	report, err = job.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("rerun sweep: %v", err)
	}
	if report.Downgraded != 0 {
		t.Fatalf("rerun must not downgrade again: %+v", report)
	}
}

func TestRunSweepCountsFailures(t *testing.T) {
	users := &fakeUsers{users: []model.User{proUser(enums.SubscriptionStatusCancelled, fixedNow.Add(-time.Hour))}}
	job := New(users, &fakeReconciler{users: users, err: errors.New("write conflict")}, &fakeNotifier{}, Config{}, nil)
	job.now = func() time.Time { return fixedNow }

	report, err := job.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("per-user failure must not abort the sweep: %v", err)
	}
	if report.SweepFailed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunHoldsLock(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	locks := redrepo.NewLockRepo(client)
	release, err := locks.Acquire(context.Background(), LockKey, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	users := &fakeUsers{users: []model.User{proUser(enums.SubscriptionStatusCancelled, fixedNow.Add(-time.Hour))}}
	job := newTestJob(users, &fakeNotifier{})
	job.AttachLocker(locks)

	if _, err := job.Run(context.Background()); !errors.Is(err, redrepo.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}

	report, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Downgraded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if mr.Exists(LockKey) {
		t.Fatalf("lock must be released after run")
	}
}

func TestRunSweepSurvivesReminderScanFailure(t *testing.T) {
	users := &fakeUsers{
		users:      []model.User{proUser(enums.SubscriptionStatusCancelled, fixedNow.Add(-time.Hour))},
		renewalErr: errors.New("renewal query failed"),
		sweepDelay: 20 * time.Millisecond,
	}
	job := newTestJob(users, &fakeNotifier{})

	report, err := job.Run(context.Background())
	if err == nil || !errors.Is(err, users.renewalErr) {
		t.Fatalf("expected the reminder scan error, got %v", err)
	}
	if report.Downgraded != 1 {
		t.Fatalf("sweep must still downgrade when reminders fail: %+v", report)
	}
	if users.get(0).PlanType != enums.PlanTypeFree {
		t.Fatalf("expired user must be downgraded")
	}
}
