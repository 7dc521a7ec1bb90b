package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	"github.com/praneeth552/Jobfinder/internal/metrics"
	"github.com/praneeth552/Jobfinder/internal/services/notifications"
	"github.com/praneeth552/Jobfinder/internal/services/subscriptions"
)

const LockKey = "jobs:reconcile:lock"

type UserScanner interface {
	ForEachRenewalCandidate(ctx context.Context, from, to time.Time, fn func(model.User) error) error
	ForEachExpiredPro(ctx context.Context, now time.Time, fn func(model.User) error) error
}

type Downgrader interface {
	Downgrade(ctx context.Context, user model.User, source string) (model.User, bool, error)
}

type Notifier interface {
	Send(ctx context.Context, kind notifications.Kind, user model.User) error
}

type ReminderLedger interface {
	MarkSent(ctx context.Context, userID, periodKey string) (bool, error)
	Forget(ctx context.Context, userID, periodKey string) error
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type Job struct {
	users          UserScanner
	reconciler     Downgrader
	notifier       Notifier
	reminders      ReminderLedger
	locker         Locker
	reminderWindow time.Duration
	lockTTL        time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

type Config struct {
	ReminderWindow time.Duration
	LockTTL        time.Duration
}

type Report struct {
	RemindersSent    int64
	RemindersSkipped int64
	RemindersFailed  int64
	Downgraded       int64
	SweepSkipped     int64
	SweepFailed      int64
}

func New(users UserScanner, reconciler Downgrader, notifier Notifier, cfg Config, logger *zap.Logger) *Job {
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = 7 * 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		users:          users,
		reconciler:     reconciler,
		notifier:       notifier,
		reminderWindow: cfg.ReminderWindow,
		lockTTL:        cfg.LockTTL,
		now:            time.Now,
		logger:         logger,
	}
}

func (j *Job) AttachReminderLedger(ledger ReminderLedger) {
	j.reminders = ledger
}

func (j *Job) AttachLocker(locker Locker) {
	j.locker = locker
}

// Run executes both scans concurrently under the run lock.
func (j *Job) Run(ctx context.Context) (Report, error) {
	release, err := j.lock(ctx)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("locked").Inc()
		return Report{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("failed to release reconcile lock", zap.Error(err))
		}
	}()

	// The scans share no context: a failed reminder query must not stop
	// the sweep from downgrading lapsed users.
	var (
		reminders, sweep      Report
		reminderErr, sweepErr error
		g                     errgroup.Group
	)
	g.Go(func() error {
		reminders, reminderErr = j.RunReminders(ctx)
		return nil
	})
	g.Go(func() error {
		sweep, sweepErr = j.RunSweep(ctx)
		return nil
	})
	_ = g.Wait()
	err = errors.Join(reminderErr, sweepErr)

	report := Report{
		RemindersSent:    reminders.RemindersSent,
		RemindersSkipped: reminders.RemindersSkipped,
		RemindersFailed:  reminders.RemindersFailed,
		Downgraded:       sweep.Downgraded,
		SweepSkipped:     sweep.SweepSkipped,
		SweepFailed:      sweep.SweepFailed,
	}
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("error").Inc()
		return report, err
	}
	metrics.BatchRunsTotal.WithLabelValues("ok").Inc()
	j.logger.Info("reconcile run completed",
		zap.Int64("reminders_sent", report.RemindersSent),
		zap.Int64("reminders_failed", report.RemindersFailed),
		zap.Int64("downgraded", report.Downgraded),
		zap.Int64("sweep_failed", report.SweepFailed),
	)
	return report, nil
}

// RunReminders notifies active pro users whose period ends within the
// reminder window. A user is reminded once per period end.
func (j *Job) RunReminders(ctx context.Context) (Report, error) {
	if j.users == nil || j.notifier == nil {
		return Report{}, fmt.Errorf("reminder scan is not configured")
	}

	var report Report
	now := j.now().UTC()
	err := j.users.ForEachRenewalCandidate(ctx, now, now.Add(j.reminderWindow), func(user model.User) error {
		validUntil := user.SubscriptionValidUntil.Effective()
		if validUntil.IsZero() {
			report.RemindersSkipped++
			return nil
		}
		period := rules.DayKey(validUntil)

		if j.reminders != nil {
			fresh, err := j.reminders.MarkSent(ctx, user.HexID(), period)
			if err != nil {
				j.logger.Warn("reminder ledger unavailable, sending anyway", zap.Error(err), zap.String("user_id", user.HexID()))
			} else if !fresh {
				report.RemindersSkipped++
				return nil
			}
		}

		if err := j.notifier.Send(ctx, notifications.KindRenewalReminder, user); err != nil {
			report.RemindersFailed++
			j.logger.Warn("renewal reminder failed", zap.Error(err), zap.String("user_id", user.HexID()))
			if j.reminders != nil {
				if ferr := j.reminders.Forget(ctx, user.HexID(), period); ferr != nil {
					j.logger.Warn("failed to clear reminder marker", zap.Error(ferr))
				}
			}
			return nil
		}

		report.RemindersSent++
		metrics.RemindersSentTotal.Inc()
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("renewal reminder scan: %w", err)
	}
	return report, nil
}

// RunSweep downgrades pro users whose period has passed. Records still in
// the past-due grace window are left alone.
func (j *Job) RunSweep(ctx context.Context) (Report, error) {
	if j.users == nil || j.reconciler == nil {
		return Report{}, fmt.Errorf("expiry sweep is not configured")
	}

	var report Report
	now := j.now().UTC()
	err := j.users.ForEachExpiredPro(ctx, now, func(user model.User) error {
		_, modified, err := j.reconciler.Downgrade(ctx, user, subscriptions.SourceSweep)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			report.SweepFailed++
			j.logger.Warn("expiry sweep failed for user", zap.Error(err), zap.String("user_id", user.HexID()))
			return nil
		}
		if modified {
			report.Downgraded++
		} else {
			report.SweepSkipped++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("expiry sweep: %w", err)
	}
	return report, nil
}

func (j *Job) lock(ctx context.Context) (func(context.Context) error, error) {
	if j.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	release, err := j.locker.Acquire(ctx, LockKey, j.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire reconcile lock: %w", err)
	}
	return release, nil
}
