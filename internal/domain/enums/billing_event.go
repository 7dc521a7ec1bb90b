package enums

// BillingEvent is a Razorpay webhook event name.
type BillingEvent string

const (
	BillingEventSubscriptionCharged   BillingEvent = "subscription.charged"
	BillingEventSubscriptionCancelled BillingEvent = "subscription.cancelled"
	BillingEventSubscriptionHalted    BillingEvent = "subscription.halted"
	BillingEventSubscriptionResumed   BillingEvent = "subscription.resumed"
	BillingEventPaymentFailed         BillingEvent = "payment.failed"
	BillingEventRefundProcessed       BillingEvent = "refund.processed"
)

type BillingEventOutcome string

const (
	BillingEventOutcomeApplied       BillingEventOutcome = "applied"
	BillingEventOutcomeIgnored       BillingEventOutcome = "ignored"
	BillingEventOutcomeUnknownTarget BillingEventOutcome = "unknown_subscription"
	BillingEventOutcomeNeedsReview   BillingEventOutcome = "needs_review"
	BillingEventOutcomeFailed        BillingEventOutcome = "failed"
)
