package rules

import (
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

// Entitlement is a value snapshot of the billing fields of a user.
// Transitions never modify it in place; see Patch.Apply.
type Entitlement struct {
	PlanType            enums.PlanType
	PlanStatus          enums.PlanStatus
	SubscriptionStatus  enums.SubscriptionStatus
	ValidUntil          model.Timestamp
	SubscriptionID      string
	CustomerID          string
	IntegrationsEnabled bool

	// Set when the stored status fields exist, whatever their value.
	HasPlanStatus         bool
	HasSubscriptionStatus bool
}

func FromUser(u model.User) Entitlement {
	e := Entitlement{
		PlanType:            enums.NormalizePlanType(string(u.PlanType)),
		ValidUntil:          u.SubscriptionValidUntil,
		SubscriptionID:      u.SubscriptionID(),
		CustomerID:          u.CustomerID(),
		IntegrationsEnabled: u.SheetsEnabled,
	}
	if u.PlanStatus != nil {
		e.HasPlanStatus = true
		e.PlanStatus = enums.NormalizePlanStatus(string(*u.PlanStatus))
	}
	if u.SubscriptionStatus != nil {
		e.HasSubscriptionStatus = true
		e.SubscriptionStatus = enums.NormalizeSubscriptionStatus(string(*u.SubscriptionStatus))
	}
	return e
}

// IsPro is the single entitlement decision. A nil user is never entitled.
func IsPro(u *model.User, now time.Time, policy Policy) bool {
	if u == nil {
		return false
	}
	return FromUser(*u).IsPro(now, policy)
}

func (e Entitlement) IsPro(now time.Time, policy Policy) bool {
	if e.PlanType != enums.PlanTypePro {
		return false
	}
	if e.PlanStatus == enums.PlanStatusPendingDeletion {
		return false
	}
	if e.legacy() {
		return true
	}

	validUntil := e.ValidUntil.Effective()
	switch e.SubscriptionStatus {
	case enums.SubscriptionStatusActive, enums.SubscriptionStatusTrialing:
		return true
	case enums.SubscriptionStatusCancelled:
		return now.Before(validUntil)
	case enums.SubscriptionStatusPastDue:
		return now.Before(validUntil.Add(policy.PastDueGrace))
	default:
		return false
	}
}

// legacy matches pro records created before statuses were tracked. A
// status field that exists but is empty or unrecognised is not legacy.
func (e Entitlement) legacy() bool {
	return !e.HasPlanStatus && !e.HasSubscriptionStatus
}

// Lapsed reports whether a pro record is past its paid period. Past-due
// records inside the payment grace window are not lapsed yet.
func (e Entitlement) Lapsed(now time.Time, policy Policy) bool {
	if e.PlanType != enums.PlanTypePro || !e.ValidUntil.Present {
		return false
	}
	end := e.ValidUntil.Effective()
	if !now.After(end) {
		return false
	}
	if e.SubscriptionStatus == enums.SubscriptionStatusPastDue && now.Before(end.Add(policy.PastDueGrace)) {
		return false
	}
	return true
}

func (e Entitlement) PendingDeletion() bool {
	return e.PlanStatus == enums.PlanStatusPendingDeletion
}
