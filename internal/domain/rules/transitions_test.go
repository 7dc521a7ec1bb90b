package rules

import (
	"reflect"
	"testing"
	"time"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

func TestExpireDowngradesLapsedUser(t *testing.T) {
	policy := DefaultPolicy()
	u := *proUser(enums.SubscriptionStatusActive, testNow.Add(-time.Second))
	sub := "sub_123"
	sheet := "sheet_1"
	u.RazorpaySubscriptionID = &sub
	u.SpreadsheetID = &sheet
	u.SheetsEnabled = true

	patch, changed := Expire(FromUser(u), testNow, policy)
	if !changed {
		t.Fatalf("expected downgrade")
	}
	got := patch.ApplyToUser(u)

	if got.PlanType != enums.PlanTypeFree {
		t.Fatalf("unexpected plan type: %s", got.PlanType)
	}
	if got.SubscriptionStatus == nil || *got.SubscriptionStatus != enums.SubscriptionStatusUnpaid {
		t.Fatalf("unexpected subscription status: %v", got.SubscriptionStatus)
	}
	if got.PlanStatus == nil || *got.PlanStatus != enums.PlanStatusExpired {
		t.Fatalf("unexpected plan status: %v", got.PlanStatus)
	}
	if got.RazorpaySubscriptionID != nil {
		t.Fatalf("subscription reference should be cleared")
	}
	if got.SheetsEnabled || got.SpreadsheetID != nil {
		t.Fatalf("integration should be revoked")
	}
	if IsPro(&got, testNow, policy) {
		t.Fatalf("downgraded user must not be pro")
	}
}

func TestExpireIsIdempotent(t *testing.T) {
	policy := DefaultPolicy()
	u := *proUser(enums.SubscriptionStatusCancelled, testNow.Add(-time.Hour))

	patch, _ := Expire(FromUser(u), testNow, policy)
	once := patch.ApplyToUser(u)

	second, changed := Expire(FromUser(once), testNow, policy)
	if changed {
		t.Fatalf("second expiry should be a no-op, got %+v", second)
	}
	twice := second.ApplyToUser(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("record changed on second application")
	}
}

func TestExpireSkipsActivePeriodAndMissingValidUntil(t *testing.T) {
	policy := DefaultPolicy()
	if _, changed := Expire(FromUser(*proUser(enums.SubscriptionStatusActive, testNow.Add(time.Hour))), testNow, policy); changed {
		t.Fatalf("user inside paid period must not be downgraded")
	}
	legacy := model.User{PlanType: enums.PlanTypePro}
	if _, changed := Expire(FromUser(legacy), testNow, policy); changed {
		t.Fatalf("record without valid_until must not be downgraded")
	}
}

func TestChargeAndCancelCommuteOnValidUntil(t *testing.T) {
	policy := DefaultPolicy()
	base := FromUser(model.User{PlanType: enums.PlanTypeFree})
	charge := Charge(testNow, policy)

	chargedFirst := Cancel().Apply(charge.Apply(base))
	cancelledFirst := charge.Apply(Cancel().Apply(base))

	want := testNow.Add(31 * 24 * time.Hour)
	if !chargedFirst.ValidUntil.Time.Equal(want) || !cancelledFirst.ValidUntil.Time.Equal(want) {
		t.Fatalf("valid_until changed by cancellation: %v / %v", chargedFirst.ValidUntil.Time, cancelledFirst.ValidUntil.Time)
	}
	if chargedFirst.SubscriptionStatus != enums.SubscriptionStatusCancelled {
		t.Fatalf("last write should win on status, got %s", chargedFirst.SubscriptionStatus)
	}
	if !chargedFirst.IsPro(testNow, policy) {
		t.Fatalf("cancelled user keeps access to period end")
	}
}

func TestHaltAndResume(t *testing.T) {
	policy := DefaultPolicy()
	e := Charge(testNow, policy).Apply(Entitlement{})

	halted := Halt().Apply(e)
	if halted.SubscriptionStatus != enums.SubscriptionStatusPastDue || halted.PlanStatus != enums.PlanStatusHalted {
		t.Fatalf("unexpected halted state: %+v", halted)
	}
	resumed := Resume().Apply(halted)
	if resumed.SubscriptionStatus != enums.SubscriptionStatusActive || resumed.PlanStatus != enums.PlanStatusActive {
		t.Fatalf("unexpected resumed state: %+v", resumed)
	}
	if !resumed.ValidUntil.Time.Equal(e.ValidUntil.Time) {
		t.Fatalf("resume must not move valid_until")
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
	if Cancel().Empty() {
		t.Fatalf("cancel patch should not be empty")
	}
}
