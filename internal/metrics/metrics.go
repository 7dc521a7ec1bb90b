package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Razorpay webhook deliveries by event and outcome.",
	}, []string{"event", "outcome"})

	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobfinder",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Razorpay webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"})

	// DowngradesTotal counts expiry downgrades by the path that applied them.
	DowngradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "billing",
		Name:      "downgrades_total",
		Help:      "Pro to free downgrades by source (realtime, sweep).",
	}, []string{"source"})

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "billing",
		Name:      "renewal_reminders_sent_total",
		Help:      "Renewal reminder notifications sent.",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "notifications",
		Name:      "sent_total",
		Help:      "Notification attempts by kind and result.",
	}, []string{"kind", "result"})

	GenerationDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "recommendations",
		Name:      "generation_decisions_total",
		Help:      "Generation rate limiter decisions by tier and result.",
	}, []string{"tier", "result"})

	BatchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfinder",
		Subsystem: "jobs",
		Name:      "reconcile_runs_total",
		Help:      "Batch reconcile runs by result.",
	}, []string{"result"})
)
