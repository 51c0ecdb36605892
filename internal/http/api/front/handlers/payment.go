package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/http/api"
	"github.com/freedomgate/portal/internal/plans"
	"github.com/freedomgate/portal/internal/subscription"
)

var walletRe = regexp.MustCompile(`^[a-zA-Z0-9]{26,35}$`)

// PaymentHandler runs the payment completion workflow.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

// completePaymentRequest defines the request body for payment completion.
type completePaymentRequest struct {
	PlanID          string `json:"planId"`
	PaymentMethod   string `json:"paymentMethod"`
	WalletAddress   string `json:"walletAddress"`
	TransactionHash string `json:"transactionHash"`
	OrderRef        string `json:"orderRef"`
}

// Complete records a client-asserted payment and activates the subscription.
func (h *PaymentHandler) Complete(c *gin.Context) {
	userID := c.GetUint64("userID")

	var body completePaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var details []api.FieldError
	if !plans.ValidPaymentMethod(strings.TrimSpace(body.PaymentMethod)) {
		details = append(details, api.FieldError{Field: "paymentMethod", Message: "Unknown payment method"})
	}
	if wallet := strings.TrimSpace(body.WalletAddress); wallet != "" && !walletRe.MatchString(wallet) {
		details = append(details, api.FieldError{Field: "walletAddress", Message: "Invalid wallet address"})
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
		return
	}

	result, errComplete := subscription.CompletePayment(c.Request.Context(), h.db, subscription.CompletePaymentParams{
		UserID:          userID,
		PlanID:          strings.TrimSpace(body.PlanID),
		PaymentMethod:   strings.TrimSpace(body.PaymentMethod),
		WalletAddress:   strings.TrimSpace(body.WalletAddress),
		TransactionHash: strings.TrimSpace(body.TransactionHash),
		OrderRef:        body.OrderRef,
	}, time.Now().UTC())
	if errComplete != nil {
		if errors.Is(errComplete, subscription.ErrInvalidPlan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
			return
		}
		// Duplicate order references land here too; the unique index failure
		// rolled the whole unit back.
		log.WithError(errComplete).WithField("userID", userID).Error("payment completion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment completed and subscription activated",
		"subscription": gin.H{
			"id":        result.Subscription.ID,
			"status":    result.Subscription.Status,
			"startDate": result.Subscription.StartDate,
			"endDate":   result.Subscription.EndDate,
			"plan":      result.Plan,
		},
		"transaction": gin.H{
			"id":              result.Transaction.ID,
			"status":          result.Transaction.Status,
			"orderRef":        result.Transaction.OrderRef,
			"transactionHash": result.Transaction.TransactionHash,
		},
	})
}
