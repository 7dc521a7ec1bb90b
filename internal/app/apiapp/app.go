package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/app/bootstrap"
	"github.com/praneeth552/Jobfinder/internal/config"
	"github.com/praneeth552/Jobfinder/internal/infra/gemini"
	"github.com/praneeth552/Jobfinder/internal/infra/razorpay"
	mongorepo "github.com/praneeth552/Jobfinder/internal/repo/mongo"
	pgrepo "github.com/praneeth552/Jobfinder/internal/repo/postgres"
	authsvc "github.com/praneeth552/Jobfinder/internal/services/auth"
	entsvc "github.com/praneeth552/Jobfinder/internal/services/entitlements"
	"github.com/praneeth552/Jobfinder/internal/services/notifications"
	paymentsvc "github.com/praneeth552/Jobfinder/internal/services/payments"
	ratesvc "github.com/praneeth552/Jobfinder/internal/services/rate"
	recsvc "github.com/praneeth552/Jobfinder/internal/services/recommendations"
	subsvc "github.com/praneeth552/Jobfinder/internal/services/subscriptions"
	userssvc "github.com/praneeth552/Jobfinder/internal/services/users"
	"github.com/praneeth552/Jobfinder/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	infra      *bootstrap.Infra
	generator  *gemini.Generator
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open infrastructure: %w", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	policy := cfg.Policy()
	userRepo := mongorepo.NewUserRepo(infra.DB)
	recommendationRepo := mongorepo.NewRecommendationRepo(infra.DB)
	jobRepo := mongorepo.NewJobRepo(infra.DB)
	billingEventRepo := pgrepo.NewBillingEventRepo(infra.Postgres)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager)
	reconciler := subsvc.NewReconciler(userRepo, policy, log)
	userService := userssvc.NewService(userRepo, reconciler, log)
	notifier := notifications.NewService(infra.Sender(cfg, log), cfg.Mail.Timeout, log)
	razorpayClient := razorpay.New(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	subscriptionService := subsvc.NewService(userRepo, razorpayClient, subsvc.Config{
		PlanID:     cfg.Razorpay.PlanID,
		TotalCount: cfg.Razorpay.TotalCount,
	}, policy, log)
	entitlementService := entsvc.NewService(userService, policy)
	limiter := ratesvc.NewLimiter(recommendationRepo, policy)
	ingestor := paymentsvc.NewIngestor(userRepo, notifier, billingEventRepo, cfg.Razorpay.WebhookSecret, policy, log)
	ingestor.SetNotifyTimeout(cfg.Mail.WebhookTimeout)

	app := &App{
		cfg:    cfg,
		logger: log,
		infra:  infra,
	}

	var generator recsvc.Generator
	if cfg.Gemini.APIKey != "" {
		g, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn("gemini init failed, recommendations disabled", zap.Error(err))
		} else {
			app.generator = g
			generator = g
		}
	}
	recommendationService := recsvc.NewService(limiter, recommendationRepo, jobRepo, generator, recsvc.Config{
		JobsLimit: cfg.Gemini.JobsLimit,
	}, log)

	var followups handlers.BillingFollowups
	if infra.Postgres != nil {
		followups = billingEventRepo
	}
	if cfg.Razorpay.WebhookSecret == "" {
		log.Warn("razorpay webhook secret is not configured, webhooks will be rejected")
	}

	RegisterRoutes(r, Dependencies{
		Tokens:          authService,
		Users:           userService,
		Webhooks:        ingestor,
		Subscriptions:   subscriptionService,
		Entitlements:    entitlementService,
		Recommendations: recommendationService,
		Followups:       followups,
		MetricsEnabled:  cfg.Metrics.Enabled,
		Logger:          log,
	})

	app.httpRouter = r
	app.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.generator != nil {
		if err := a.generator.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if err := a.infra.Close(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
