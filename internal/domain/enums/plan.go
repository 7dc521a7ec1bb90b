package enums

import "strings"

type PlanType string

const (
	PlanTypeFree PlanType = "free"
	PlanTypePro  PlanType = "pro"
)

func NormalizePlanType(raw string) PlanType {
	return PlanType(strings.ToLower(strings.TrimSpace(raw)))
}

// SubscriptionStatus is the normalized status entitlement decisions are made on.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid    SubscriptionStatus = "unpaid"
)

func NormalizeSubscriptionStatus(raw string) SubscriptionStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "canceled":
		return SubscriptionStatusCancelled
	case "past-due", "pastdue":
		return SubscriptionStatusPastDue
	}
	return SubscriptionStatus(v)
}

// PlanStatus mirrors the last provider-side status seen for the subscription.
type PlanStatus string

const (
	PlanStatusCreated         PlanStatus = "created"
	PlanStatusActive          PlanStatus = "active"
	PlanStatusTrialing        PlanStatus = "trialing"
	PlanStatusCancelled       PlanStatus = "cancelled"
	PlanStatusHalted          PlanStatus = "halted"
	PlanStatusPastDue         PlanStatus = "past_due"
	PlanStatusExpired         PlanStatus = "expired"
	PlanStatusUnpaid          PlanStatus = "unpaid"
	PlanStatusPendingDeletion PlanStatus = "pending_deletion"
)

func NormalizePlanStatus(raw string) PlanStatus {
	return PlanStatus(strings.ToLower(strings.TrimSpace(raw)))
}
