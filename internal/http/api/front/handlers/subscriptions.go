package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/plans"
	"github.com/freedomgate/portal/internal/subscription"
)

// SubscriptionHandler serves the customer's subscription view and the expiry sweep.
type SubscriptionHandler struct {
	db *gorm.DB
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{db: db}
}

// Get returns the user's current subscription and last 10 transactions.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID := c.GetUint64("userID")
	ctx := c.Request.Context()

	sub, errSub := subscription.FindCurrent(ctx, h.db, userID)
	if errSub != nil {
		log.WithError(errSub).Error("subscriptions: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var transactions []models.Transaction
	if errTx := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(10).
		Find(&transactions).Error; errTx != nil {
		log.WithError(errTx).Error("subscriptions: transaction history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var subData gin.H
	if sub != nil {
		plan, ok := plans.Find(sub.PlanID)
		if !ok {
			plan = plans.Unknown(sub.PlanID)
		}
		subData = gin.H{
			"id":        sub.ID,
			"status":    sub.Status,
			"startDate": sub.StartDate,
			"endDate":   sub.EndDate,
			"autoRenew": sub.AutoRenew,
			"plan":      plan,
		}
	}

	txOut := make([]gin.H, 0, len(transactions))
	for _, t := range transactions {
		txOut = append(txOut, gin.H{
			"id":              t.ID,
			"amount":          t.Amount,
			"currency":        t.Currency,
			"paymentMethod":   t.PaymentMethod,
			"status":          t.Status,
			"createdAt":       t.CreatedAt,
			"transactionHash": t.TransactionHash,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": subData,
		"transactions": txOut,
	})
}

// CheckExpiry runs the expiry sweep over all active subscriptions.
func (h *SubscriptionHandler) CheckExpiry(c *gin.Context) {
	count, errSweep := subscription.ExpireOverdue(c.Request.Context(), h.db, time.Now().UTC())
	if errSweep != nil {
		log.WithError(errSweep).Error("subscriptions: expiry sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription expiry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Updated %d expired subscriptions", count),
	})
}
