package rules

import (
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

// Patch is a partial set of entitlement fields. Nil fields are left
// untouched. An empty SubscriptionID clears the stored reference.
type Patch struct {
	PlanType           *enums.PlanType
	PlanStatus         *enums.PlanStatus
	SubscriptionStatus *enums.SubscriptionStatus
	ValidUntil         *time.Time
	SubscriptionID     *string
	CustomerID         *string
	RevokeIntegrations bool
}

func (p Patch) Empty() bool {
	return p.PlanType == nil &&
		p.PlanStatus == nil &&
		p.SubscriptionStatus == nil &&
		p.ValidUntil == nil &&
		p.SubscriptionID == nil &&
		p.CustomerID == nil &&
		!p.RevokeIntegrations
}

func (p Patch) Apply(e Entitlement) Entitlement {
	if p.PlanType != nil {
		e.PlanType = *p.PlanType
	}
	if p.PlanStatus != nil {
		e.PlanStatus = *p.PlanStatus
		e.HasPlanStatus = true
	}
	if p.SubscriptionStatus != nil {
		e.SubscriptionStatus = *p.SubscriptionStatus
		e.HasSubscriptionStatus = true
	}
	if p.ValidUntil != nil {
		e.ValidUntil = model.At(*p.ValidUntil)
	}
	if p.SubscriptionID != nil {
		e.SubscriptionID = *p.SubscriptionID
	}
	if p.CustomerID != nil {
		e.CustomerID = *p.CustomerID
	}
	if p.RevokeIntegrations {
		e.IntegrationsEnabled = false
	}
	return e
}

// ApplyToUser mirrors a persisted patch onto an in-memory record.
func (p Patch) ApplyToUser(u model.User) model.User {
	if p.PlanType != nil {
		u.PlanType = *p.PlanType
	}
	if p.PlanStatus != nil {
		v := *p.PlanStatus
		u.PlanStatus = &v
	}
	if p.SubscriptionStatus != nil {
		v := *p.SubscriptionStatus
		u.SubscriptionStatus = &v
	}
	if p.ValidUntil != nil {
		u.SubscriptionValidUntil = model.At(*p.ValidUntil)
	}
	if p.SubscriptionID != nil {
		u.RazorpaySubscriptionID = optionalString(*p.SubscriptionID)
	}
	if p.CustomerID != nil {
		u.RazorpayCustomerID = optionalString(*p.CustomerID)
	}
	if p.RevokeIntegrations {
		u.SheetsEnabled = false
		u.SpreadsheetID = nil
	}
	return u
}

// Expire downgrades a lapsed pro record to free. It returns false when
// the record is not lapsed, so applying it twice changes nothing.
func Expire(e Entitlement, now time.Time, policy Policy) (Patch, bool) {
	if !e.Lapsed(now, policy) {
		return Patch{}, false
	}
	return Patch{
		PlanType:           ptr(enums.PlanTypeFree),
		PlanStatus:         ptr(enums.PlanStatusExpired),
		SubscriptionStatus: ptr(enums.SubscriptionStatusUnpaid),
		SubscriptionID:     ptr(""),
		RevokeIntegrations: true,
	}, true
}

// Charge opens a new paid period of one billing cycle from now.
func Charge(now time.Time, policy Policy) Patch {
	validUntil := now.UTC().Add(policy.BillingCycle)
	return Patch{
		PlanType:           ptr(enums.PlanTypePro),
		PlanStatus:         ptr(enums.PlanStatusActive),
		SubscriptionStatus: ptr(enums.SubscriptionStatusActive),
		ValidUntil:         &validUntil,
	}
}

// Cancel keeps ValidUntil so access runs to the end of the paid period.
func Cancel() Patch {
	return Patch{
		PlanStatus:         ptr(enums.PlanStatusCancelled),
		SubscriptionStatus: ptr(enums.SubscriptionStatusCancelled),
	}
}

func Halt() Patch {
	return Patch{
		PlanStatus:         ptr(enums.PlanStatusHalted),
		SubscriptionStatus: ptr(enums.SubscriptionStatusPastDue),
	}
}

func Resume() Patch {
	return Patch{
		PlanStatus:         ptr(enums.PlanStatusActive),
		SubscriptionStatus: ptr(enums.SubscriptionStatusActive),
	}
}

func StartSubscription(subscriptionID, customerID string) Patch {
	return Patch{
		PlanStatus:     ptr(enums.PlanStatusCreated),
		SubscriptionID: ptr(subscriptionID),
		CustomerID:     ptr(customerID),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
