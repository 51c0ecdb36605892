package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/plans"
)

func TestSweepOnce_ExpiresOverdueSubscriptions(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "sweeper@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	overdue := models.Subscription{
		UserID: user.ID, PlanID: plans.PlanWeekly, Status: models.SubscriptionActive,
		StartDate: now.AddDate(0, 0, -14), EndDate: now.AddDate(0, 0, -7),
	}
	if errCreate := conn.Create(&overdue).Error; errCreate != nil {
		t.Fatalf("create overdue subscription: %v", errCreate)
	}

	sweeper := &Sweeper{
		db:       conn,
		interval: time.Minute,
		now: func() time.Time {
			return now
		},
	}
	if errSweep := sweeper.SweepOnce(context.Background()); errSweep != nil {
		t.Fatalf("sweep once: %v", errSweep)
	}

	var sub models.Subscription
	if errFind := conn.First(&sub, overdue.ID).Error; errFind != nil {
		t.Fatalf("find subscription: %v", errFind)
	}
	if sub.Status != models.SubscriptionExpired {
		t.Fatalf("expected expired, got %s", sub.Status)
	}
}

func TestSweepOnce_NilDB(t *testing.T) {
	sweeper := &Sweeper{}
	if errSweep := sweeper.SweepOnce(context.Background()); errSweep == nil {
		t.Fatalf("expected error for nil db")
	}
}
