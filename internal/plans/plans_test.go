package plans

import (
	"testing"
	"time"
)

func TestFind(t *testing.T) {
	plan, ok := Find(PlanMonthly)
	if !ok {
		t.Fatalf("expected monthly plan in catalog")
	}
	if plan.Price != 15.99 || !plan.Popular {
		t.Fatalf("unexpected monthly plan: %+v", plan)
	}

	if _, ok := Find("lifetime"); ok {
		t.Fatalf("expected unknown plan id to miss")
	}
}

func TestUnknown(t *testing.T) {
	plan := Unknown("retired-plan")
	if plan.ID != "retired-plan" || plan.Name != "Unknown Plan" || plan.Price != 0 {
		t.Fatalf("unexpected placeholder: %+v", plan)
	}
}

func TestAddDuration(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		planID string
		want   time.Time
	}{
		{PlanWeekly, base.AddDate(0, 0, 7)},
		{PlanMonthly, base.AddDate(0, 1, 0)},
		{PlanQuarterly, base.AddDate(0, 3, 0)},
		{PlanBiannual, base.AddDate(0, 6, 0)},
		{PlanAnnual, base.AddDate(1, 0, 0)},
	}
	for _, tc := range cases {
		plan, ok := Find(tc.planID)
		if !ok {
			t.Fatalf("plan %s missing from catalog", tc.planID)
		}
		if got := plan.AddDuration(base); !got.Equal(tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.planID, tc.want, got)
		}
	}
}

func TestAddDuration_MonthEndRollover(t *testing.T) {
	// Calendar arithmetic rolls Jan 31 + 1 month into March.
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	plan, _ := Find(PlanMonthly)
	got := plan.AddDuration(jan31)
	want := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestValidPaymentMethod(t *testing.T) {
	if !ValidPaymentMethod("usdt-trc20") || !ValidPaymentMethod("usdt-erc20") {
		t.Fatalf("expected catalog payment methods to validate")
	}
	if ValidPaymentMethod("paypal") {
		t.Fatalf("expected unknown payment method to fail")
	}
}
