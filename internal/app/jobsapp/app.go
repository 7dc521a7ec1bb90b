package jobsapp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/app/bootstrap"
	"github.com/praneeth552/Jobfinder/internal/config"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/infra/queue"
	"github.com/praneeth552/Jobfinder/internal/infra/razorpay"
	"github.com/praneeth552/Jobfinder/internal/jobs/reconcile"
	mongorepo "github.com/praneeth552/Jobfinder/internal/repo/mongo"
	pgrepo "github.com/praneeth552/Jobfinder/internal/repo/postgres"
	redrepo "github.com/praneeth552/Jobfinder/internal/repo/redis"
	"github.com/praneeth552/Jobfinder/internal/services/notifications"
	subsvc "github.com/praneeth552/Jobfinder/internal/services/subscriptions"
)

// App runs the scheduled and operator-triggered billing work outside the
// API process.
type App struct {
	cfg           config.Config
	logger        *zap.Logger
	infra         *bootstrap.Infra
	job           *reconcile.Job
	users         *mongorepo.UserRepo
	journal       *pgrepo.BillingEventRepo
	subscriptions *subsvc.Service
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open infrastructure for jobs app: %w", err)
	}

	policy := cfg.Policy()
	userRepo := mongorepo.NewUserRepo(infra.DB)
	reconciler := subsvc.NewReconciler(userRepo, policy, logger)
	notifier := notifications.NewService(infra.Sender(cfg, logger), cfg.Mail.Timeout, logger)

	job := reconcile.New(userRepo, reconciler, notifier, reconcile.Config{
		ReminderWindow: cfg.Billing.ReminderWindow,
		LockTTL:        cfg.Jobs.LockTTL,
	}, logger)
	if infra.Redis != nil {
		job.AttachLocker(redrepo.NewLockRepo(infra.Redis))
		job.AttachReminderLedger(redrepo.NewReminderRepo(infra.Redis, cfg.Billing.ReminderDedupeTTL))
	} else {
		logger.Warn("redis unavailable, running without run lock and reminder dedupe")
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		infra:   infra,
		job:     job,
		users:   userRepo,
		journal: pgrepo.NewBillingEventRepo(infra.Postgres),
		subscriptions: subsvc.NewService(userRepo, razorpay.New(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret), subsvc.Config{
			PlanID:     cfg.Razorpay.PlanID,
			TotalCount: cfg.Razorpay.TotalCount,
		}, policy, logger),
	}, nil
}

func (a *App) Reconcile(ctx context.Context) (reconcile.Report, error) {
	return a.job.Run(ctx)
}

func (a *App) Reminders(ctx context.Context) (reconcile.Report, error) {
	return a.job.RunReminders(ctx)
}

func (a *App) Sweep(ctx context.Context) (reconcile.Report, error) {
	return a.job.RunSweep(ctx)
}

// RunNotifier drains the mail queue and delivers through Postmark until
// ctx is cancelled.
func (a *App) RunNotifier(ctx context.Context) error {
	if a.cfg.AMQP.URL == "" {
		return fmt.Errorf("amqp.url is required for the notifier")
	}
	consumer := queue.NewConsumer(a.cfg.AMQP.URL, a.cfg.AMQP.Queue, bootstrap.DirectSender(a.cfg), a.logger)
	a.logger.Info("notifier started", zap.String("queue", a.cfg.AMQP.Queue))
	return consumer.Run(ctx)
}

func (a *App) Followups(ctx context.Context, limit int) ([]model.BillingEvent, error) {
	if a.infra.Postgres == nil {
		return nil, fmt.Errorf("postgres is not configured")
	}
	return a.journal.ListNeedsReview(ctx, limit)
}

func (a *App) ResolveFollowup(ctx context.Context, id, resolution string) error {
	return a.journal.Resolve(ctx, id, resolution, time.Now().UTC())
}

// Inspection pairs the provider's view of a subscription with the user
// record that references it, if any.
type Inspection struct {
	Provider razorpay.Subscription `json:"provider"`
	Stored   *model.User           `json:"stored"`
}

func (a *App) Inspect(ctx context.Context, subscriptionID string) (Inspection, error) {
	sub, err := a.subscriptions.Inspect(ctx, subscriptionID)
	if err != nil {
		return Inspection{}, err
	}
	out := Inspection{Provider: sub}
	user, ok, err := a.users.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return out, fmt.Errorf("find stored subscription: %w", err)
	}
	if ok {
		out.Stored = &user
	}
	return out, nil
}

func (a *App) Close(ctx context.Context) error {
	return a.infra.Close(ctx)
}
