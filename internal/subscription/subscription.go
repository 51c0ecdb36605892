// Package subscription implements the payment reconciliation workflow, the
// admin approve/reject transitions, and the expiry sweep. Every multi-row
// mutation here runs inside a single database transaction; callers never
// observe a transaction row without its subscription link or vice versa.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/plans"
)

// paymentWindow is the recorded expiry for a payment attempt. It is stored on
// the transaction row but nothing re-checks it; only subscriptions are swept.
const paymentWindow = 30 * time.Minute

// ErrInvalidPlan indicates a plan ID absent from the catalog.
var ErrInvalidPlan = errors.New("subscription: invalid plan")

// ErrNotFound indicates the referenced record does not exist.
var ErrNotFound = errors.New("subscription: not found")

// CompletePaymentParams holds the inputs for payment reconciliation.
type CompletePaymentParams struct {
	UserID          uint64
	PlanID          string
	PaymentMethod   string
	WalletAddress   string
	TransactionHash string
	OrderRef        string
}

// PaymentResult reports the rows produced by a completed payment.
type PaymentResult struct {
	Transaction  models.Transaction
	Subscription models.Subscription
	Plan         plans.Plan
}

// CompletePayment records a client-asserted payment and atomically creates or
// extends the user's subscription:
//
//  1. Insert the transaction with status completed. The payment is trusted as
//     asserted; no on-chain verification happens here.
//  2. Find the user's most recently created active subscription.
//  3. Found: new end = max(current end, now) + plan duration, and the row
//     switches to the newly purchased plan. Duration stacks, plans do not.
//  4. Not found: create a fresh active subscription running now..now+duration.
//  5. Point the transaction at the resulting subscription.
//
// Any failure, including an order reference collision, rolls back every write.
func CompletePayment(ctx context.Context, conn *gorm.DB, params CompletePaymentParams, now time.Time) (PaymentResult, error) {
	plan, ok := plans.Find(params.PlanID)
	if !ok {
		return PaymentResult{}, ErrInvalidPlan
	}

	orderRef := strings.TrimSpace(params.OrderRef)
	if orderRef == "" {
		orderRef = "ORDER-" + uuid.NewString()
	}

	var result PaymentResult
	errTx := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn := models.Transaction{
			UserID:          params.UserID,
			Amount:          plan.Price,
			Currency:        plans.Currency,
			PaymentMethod:   params.PaymentMethod,
			WalletAddress:   params.WalletAddress,
			TransactionHash: params.TransactionHash,
			Status:          models.TransactionCompleted,
			OrderRef:        orderRef,
			ExpiresAt:       now.Add(paymentWindow),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if errCreate := tx.Create(&txn).Error; errCreate != nil {
			return fmt.Errorf("create transaction: %w", errCreate)
		}

		var current models.Subscription
		errFind := tx.
			Where("user_id = ? AND status = ?", params.UserID, models.SubscriptionActive).
			Order("created_at DESC").
			First(&current).Error

		var sub models.Subscription
		switch {
		case errFind == nil:
			base := current.EndDate
			if base.Before(now) {
				base = now
			}
			current.EndDate = plan.AddDuration(base)
			current.PlanID = plan.ID
			current.Status = models.SubscriptionActive
			current.UpdatedAt = now
			if errSave := tx.Save(&current).Error; errSave != nil {
				return fmt.Errorf("extend subscription: %w", errSave)
			}
			sub = current
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				UserID:    params.UserID,
				PlanID:    plan.ID,
				Status:    models.SubscriptionActive,
				StartDate: now,
				EndDate:   plan.AddDuration(now),
				AutoRenew: true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if errCreate := tx.Create(&sub).Error; errCreate != nil {
				return fmt.Errorf("create subscription: %w", errCreate)
			}
		default:
			return fmt.Errorf("find active subscription: %w", errFind)
		}

		if errLink := tx.Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Update("subscription_id", sub.ID).Error; errLink != nil {
			return fmt.Errorf("link transaction: %w", errLink)
		}
		txn.SubscriptionID = &sub.ID

		result = PaymentResult{Transaction: txn, Subscription: sub, Plan: plan}
		return nil
	})
	if errTx != nil {
		return PaymentResult{}, errTx
	}
	return result, nil
}

// Approve marks a transaction completed and, when it already references a
// subscription, flips that subscription back to active. Dates are untouched;
// approval is a pure status transition, unlike CompletePayment.
func Approve(ctx context.Context, conn *gorm.DB, transactionID uint64) (models.Transaction, error) {
	var txn models.Transaction
	errTx := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&txn, transactionID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find transaction: %w", errFind)
		}

		txn.Status = models.TransactionCompleted
		if errSave := tx.Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Update("status", models.TransactionCompleted).Error; errSave != nil {
			return fmt.Errorf("update transaction: %w", errSave)
		}

		if txn.SubscriptionID != nil {
			if errActivate := tx.Model(&models.Subscription{}).
				Where("id = ?", *txn.SubscriptionID).
				Update("status", models.SubscriptionActive).Error; errActivate != nil {
				return fmt.Errorf("activate subscription: %w", errActivate)
			}
		}
		return nil
	})
	if errTx != nil {
		return models.Transaction{}, errTx
	}
	return txn, nil
}

// Reject marks a transaction failed. The linked subscription, if any, is left alone.
func Reject(ctx context.Context, conn *gorm.DB, transactionID uint64) (models.Transaction, error) {
	var txn models.Transaction
	if errFind := conn.WithContext(ctx).First(&txn, transactionID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Transaction{}, ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("find transaction: %w", errFind)
	}
	txn.Status = models.TransactionFailed
	if errSave := conn.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", txn.ID).
		Update("status", models.TransactionFailed).Error; errSave != nil {
		return models.Transaction{}, fmt.Errorf("update transaction: %w", errSave)
	}
	return txn, nil
}

// ExpireOverdue demotes every active subscription whose end date has passed to
// expired, returning the number of rows touched. Running it again immediately
// finds nothing.
func ExpireOverdue(ctx context.Context, conn *gorm.DB, now time.Time) (int64, error) {
	res := conn.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionActive, now).
		Updates(map[string]any{"status": models.SubscriptionExpired, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindCurrent returns the user's most recently created active or pending
// subscription, or nil when none exists.
func FindCurrent(ctx context.Context, conn *gorm.DB, userID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := conn.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionPending}).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, fmt.Errorf("find current subscription: %w", errFind)
	}
	return &sub, nil
}
