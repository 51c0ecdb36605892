package subscription

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freedomgate/portal/internal/db"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/plans"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "fgate-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createTestUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: "Test User", Password: "x", Language: "en"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func TestCompletePayment_CreatesFreshSubscription(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "fresh@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	result, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID:        user.ID,
		PlanID:        plans.PlanMonthly,
		PaymentMethod: "usdt-trc20",
		OrderRef:      "ORDER-fresh-1",
	}, now)
	if errPay != nil {
		t.Fatalf("complete payment: %v", errPay)
	}

	if result.Subscription.Status != models.SubscriptionActive {
		t.Fatalf("expected active subscription, got %s", result.Subscription.Status)
	}
	if !result.Subscription.StartDate.Equal(now) {
		t.Fatalf("expected start=%s, got %s", now, result.Subscription.StartDate)
	}
	wantEnd := now.AddDate(0, 1, 0)
	if !result.Subscription.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end=%s, got %s", wantEnd, result.Subscription.EndDate)
	}
	if !result.Subscription.AutoRenew {
		t.Fatalf("expected auto renew on fresh subscription")
	}
	if result.Transaction.Status != models.TransactionCompleted {
		t.Fatalf("expected completed transaction, got %s", result.Transaction.Status)
	}
	if result.Transaction.SubscriptionID == nil || *result.Transaction.SubscriptionID != result.Subscription.ID {
		t.Fatalf("expected transaction linked to subscription %d", result.Subscription.ID)
	}
	if result.Transaction.Amount != 15.99 || result.Transaction.Currency != "USDT" {
		t.Fatalf("expected catalog amount, got %v %s", result.Transaction.Amount, result.Transaction.Currency)
	}
}

func TestCompletePayment_ExtendsActiveSubscription(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "extend@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first, errFirst := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanMonthly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-ext-1",
	}, now)
	if errFirst != nil {
		t.Fatalf("first payment: %v", errFirst)
	}

	// Paying again mid-period stacks onto the current end date, not onto now.
	later := now.Add(48 * time.Hour)
	second, errSecond := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanAnnual, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-ext-2",
	}, later)
	if errSecond != nil {
		t.Fatalf("second payment: %v", errSecond)
	}

	if second.Subscription.ID != first.Subscription.ID {
		t.Fatalf("expected the same subscription row to be extended")
	}
	wantEnd := first.Subscription.EndDate.AddDate(1, 0, 0)
	if !second.Subscription.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end=%s, got %s", wantEnd, second.Subscription.EndDate)
	}
	if second.Subscription.PlanID != plans.PlanAnnual {
		t.Fatalf("expected plan switch to annual, got %s", second.Subscription.PlanID)
	}

	var count int64
	if errCount := conn.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error; errCount != nil {
		t.Fatalf("count subscriptions: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one subscription row, got %d", count)
	}
}

func TestCompletePayment_LapsedActiveExtendsFromNow(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "lapsed@example.com")

	// Active row whose end date already passed and was never swept.
	stale := models.Subscription{
		UserID:    user.ID,
		PlanID:    plans.PlanWeekly,
		Status:    models.SubscriptionActive,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	if errCreate := conn.Create(&stale).Error; errCreate != nil {
		t.Fatalf("create stale subscription: %v", errCreate)
	}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	result, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanWeekly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-lapsed-1",
	}, now)
	if errPay != nil {
		t.Fatalf("complete payment: %v", errPay)
	}

	wantEnd := now.AddDate(0, 0, 7)
	if !result.Subscription.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end=%s, got %s", wantEnd, result.Subscription.EndDate)
	}
}

func TestCompletePayment_InvalidPlan(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "badplan@example.com")

	_, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: "lifetime", PaymentMethod: "usdt-trc20",
	}, time.Now().UTC())
	if errPay != ErrInvalidPlan {
		t.Fatalf("expected ErrInvalidPlan, got %v", errPay)
	}

	var count int64
	if errCount := conn.Model(&models.Transaction{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count transactions: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected no transaction rows, got %d", count)
	}
}

func TestCompletePayment_DuplicateOrderRefRollsBack(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "duporder@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first, errFirst := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanMonthly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-dup",
	}, now)
	if errFirst != nil {
		t.Fatalf("first payment: %v", errFirst)
	}

	_, errSecond := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanMonthly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-dup",
	}, now.Add(time.Hour))
	if errSecond == nil {
		t.Fatalf("expected duplicate order reference to fail")
	}

	// The whole replay rolled back: one transaction, end date unchanged.
	var txCount int64
	if errCount := conn.Model(&models.Transaction{}).Count(&txCount).Error; errCount != nil {
		t.Fatalf("count transactions: %v", errCount)
	}
	if txCount != 1 {
		t.Fatalf("expected one transaction row, got %d", txCount)
	}
	var sub models.Subscription
	if errFind := conn.First(&sub, first.Subscription.ID).Error; errFind != nil {
		t.Fatalf("find subscription: %v", errFind)
	}
	if !sub.EndDate.Equal(first.Subscription.EndDate) {
		t.Fatalf("expected end date unchanged after rollback, got %s", sub.EndDate)
	}
}

func TestCompletePayment_GeneratesOrderRef(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "noref@example.com")

	result, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanWeekly, PaymentMethod: "usdt-erc20",
	}, time.Now().UTC())
	if errPay != nil {
		t.Fatalf("complete payment: %v", errPay)
	}
	if !strings.HasPrefix(result.Transaction.OrderRef, "ORDER-") || len(result.Transaction.OrderRef) <= len("ORDER-") {
		t.Fatalf("expected generated order reference, got %q", result.Transaction.OrderRef)
	}
}

func TestApprove_ActivatesLinkedSubscription(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "approve@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	result, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanMonthly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-appr-1",
	}, now)
	if errPay != nil {
		t.Fatalf("complete payment: %v", errPay)
	}

	// Simulate a disputed payment that was failed and its subscription parked.
	if errTx := conn.Model(&models.Transaction{}).Where("id = ?", result.Transaction.ID).
		Update("status", models.TransactionFailed).Error; errTx != nil {
		t.Fatalf("fail transaction: %v", errTx)
	}
	if errSub := conn.Model(&models.Subscription{}).Where("id = ?", result.Subscription.ID).
		Update("status", models.SubscriptionPending).Error; errSub != nil {
		t.Fatalf("park subscription: %v", errSub)
	}

	txn, errApprove := Approve(context.Background(), conn, result.Transaction.ID)
	if errApprove != nil {
		t.Fatalf("approve: %v", errApprove)
	}
	if txn.Status != models.TransactionCompleted {
		t.Fatalf("expected completed, got %s", txn.Status)
	}

	var sub models.Subscription
	if errFind := conn.First(&sub, result.Subscription.ID).Error; errFind != nil {
		t.Fatalf("find subscription: %v", errFind)
	}
	if sub.Status != models.SubscriptionActive {
		t.Fatalf("expected active subscription after approve, got %s", sub.Status)
	}
	// Approve is a status flip only.
	if !sub.EndDate.Equal(result.Subscription.EndDate) {
		t.Fatalf("expected end date untouched, got %s", sub.EndDate)
	}
}

func TestApprove_NotFound(t *testing.T) {
	conn := openTestDB(t)
	if _, errApprove := Approve(context.Background(), conn, 9999); errApprove != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", errApprove)
	}
}

func TestReject_LeavesSubscriptionAlone(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "reject@example.com")

	result, errPay := CompletePayment(context.Background(), conn, CompletePaymentParams{
		UserID: user.ID, PlanID: plans.PlanMonthly, PaymentMethod: "usdt-trc20", OrderRef: "ORDER-rej-1",
	}, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if errPay != nil {
		t.Fatalf("complete payment: %v", errPay)
	}

	txn, errReject := Reject(context.Background(), conn, result.Transaction.ID)
	if errReject != nil {
		t.Fatalf("reject: %v", errReject)
	}
	if txn.Status != models.TransactionFailed {
		t.Fatalf("expected failed, got %s", txn.Status)
	}

	var sub models.Subscription
	if errFind := conn.First(&sub, result.Subscription.ID).Error; errFind != nil {
		t.Fatalf("find subscription: %v", errFind)
	}
	if sub.Status != models.SubscriptionActive {
		t.Fatalf("expected subscription untouched by reject, got %s", sub.Status)
	}
}

func TestExpireOverdue_IsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "sweep@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	overdue := models.Subscription{
		UserID: user.ID, PlanID: plans.PlanWeekly, Status: models.SubscriptionActive,
		StartDate: now.AddDate(0, 0, -14), EndDate: now.AddDate(0, 0, -7),
	}
	if errCreate := conn.Create(&overdue).Error; errCreate != nil {
		t.Fatalf("create overdue subscription: %v", errCreate)
	}
	current := models.Subscription{
		UserID: createTestUser(t, conn, "sweep2@example.com").ID, PlanID: plans.PlanMonthly,
		Status: models.SubscriptionActive, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 1, 0),
	}
	if errCreate := conn.Create(&current).Error; errCreate != nil {
		t.Fatalf("create current subscription: %v", errCreate)
	}

	updated, errSweep := ExpireOverdue(context.Background(), conn, now)
	if errSweep != nil {
		t.Fatalf("expire overdue: %v", errSweep)
	}
	if updated != 1 {
		t.Fatalf("expected 1 row expired, got %d", updated)
	}

	var sub models.Subscription
	if errFind := conn.First(&sub, overdue.ID).Error; errFind != nil {
		t.Fatalf("find overdue subscription: %v", errFind)
	}
	if sub.Status != models.SubscriptionExpired {
		t.Fatalf("expected expired, got %s", sub.Status)
	}

	again, errSweep := ExpireOverdue(context.Background(), conn, now)
	if errSweep != nil {
		t.Fatalf("second sweep: %v", errSweep)
	}
	if again != 0 {
		t.Fatalf("expected second sweep to touch nothing, got %d", again)
	}
}

func TestFindCurrent(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "current@example.com")

	sub, errFind := FindCurrent(context.Background(), conn, user.ID)
	if errFind != nil {
		t.Fatalf("find current: %v", errFind)
	}
	if sub != nil {
		t.Fatalf("expected nil subscription for fresh user")
	}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expired := models.Subscription{
		UserID: user.ID, PlanID: plans.PlanWeekly, Status: models.SubscriptionExpired,
		StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, -1, 0),
		CreatedAt: now.AddDate(0, -2, 0),
	}
	if errCreate := conn.Create(&expired).Error; errCreate != nil {
		t.Fatalf("create expired subscription: %v", errCreate)
	}
	active := models.Subscription{
		UserID: user.ID, PlanID: plans.PlanMonthly, Status: models.SubscriptionActive,
		StartDate: now, EndDate: now.AddDate(0, 1, 0),
		CreatedAt: now,
	}
	if errCreate := conn.Create(&active).Error; errCreate != nil {
		t.Fatalf("create active subscription: %v", errCreate)
	}

	sub, errFind = FindCurrent(context.Background(), conn, user.ID)
	if errFind != nil {
		t.Fatalf("find current: %v", errFind)
	}
	if sub == nil || sub.ID != active.ID {
		t.Fatalf("expected the active subscription, got %+v", sub)
	}
}
