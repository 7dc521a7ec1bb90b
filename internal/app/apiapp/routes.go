package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	authsvc "github.com/praneeth552/Jobfinder/internal/services/auth"
	"github.com/praneeth552/Jobfinder/internal/transport/http/handlers"
)

type Dependencies struct {
	Tokens          TokenValidator
	Users           UserLoader
	Webhooks        handlers.WebhookIngestor
	Subscriptions   handlers.SubscriptionService
	Entitlements    handlers.EntitlementReader
	Recommendations handlers.RecommendationService
	Followups       handlers.BillingFollowups
	MetricsEnabled  bool
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, deps.Logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Subscriptions, deps.Entitlements, deps.Logger)
	meHandler := handlers.NewMeHandler(deps.Entitlements, deps.Recommendations, deps.Logger)
	entitlementsHandler := handlers.NewEntitlementsHandler(deps.Entitlements, deps.Recommendations, deps.Logger)
	recommendationsHandler := handlers.NewRecommendationsHandler(deps.Recommendations, deps.Logger)
	adminBillingHandler := handlers.NewAdminBillingHandler(deps.Followups, deps.Logger)
	authMW := AuthMiddleware(deps.Tokens, deps.Users, deps.Logger)
	adminRoleMW := RequireRole(authsvc.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)
	if deps.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Post("/webhooks/razorpay", webhookHandler.Razorpay)

	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Post("/payment/create-pro-subscription", subscriptionHandler.Create)
		r.Post("/payment/cancel-subscription", subscriptionHandler.Cancel)
		r.Get("/user/subscription", subscriptionHandler.Status)
		r.Get("/user/me", meHandler.Handle)

		r.Get("/recommendations", recommendationsHandler.Latest)
		r.Get("/recommendations/eligibility", recommendationsHandler.Eligibility)
		r.Post("/generate_recommendations", recommendationsHandler.Generate)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/me", meHandler.Handle)
			r.Get("/entitlements", entitlementsHandler.Get)
		})

		r.Route("/admin/billing", func(r chi.Router) {
			r.Use(adminRoleMW)
			r.Get("/followups", adminBillingHandler.List)
			r.Post("/followups/{id}/resolve", adminBillingHandler.Resolve)
		})
	})
}
