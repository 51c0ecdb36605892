package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/freedomgate/portal/internal/db"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/subscription"
)

// TransactionAdminHandler manages the admin transaction listing and mutations.
type TransactionAdminHandler struct {
	db *gorm.DB
}

// NewTransactionAdminHandler constructs a TransactionAdminHandler.
func NewTransactionAdminHandler(db *gorm.DB) *TransactionAdminHandler {
	return &TransactionAdminHandler{db: db}
}

// transactionView shapes one transaction row for admin responses.
func transactionView(t models.Transaction) gin.H {
	view := gin.H{
		"id":              t.ID,
		"amount":          t.Amount,
		"currency":        t.Currency,
		"paymentMethod":   t.PaymentMethod,
		"walletAddress":   t.WalletAddress,
		"transactionHash": t.TransactionHash,
		"status":          t.Status,
		"orderRef":        t.OrderRef,
		"expiresAt":       t.ExpiresAt,
		"createdAt":       t.CreatedAt,
		"user": gin.H{
			"id":    t.User.ID,
			"name":  t.User.Name,
			"email": t.User.Email,
		},
	}
	if t.Subscription != nil {
		view["subscription"] = gin.H{
			"id":     t.Subscription.ID,
			"planId": t.Subscription.PlanID,
			"status": t.Subscription.Status,
		}
	}
	return view
}

// List returns transactions with pagination, search, and status filter. Search
// covers owner name/email, order reference, and transaction hash.
func (h *TransactionAdminHandler) List(c *gin.Context) {
	params := parseListingParams(c)
	ctx := c.Request.Context()

	q := h.db.WithContext(ctx).Model(&models.Transaction{}).
		Joins("JOIN users ON users.id = transactions.user_id")
	if params.Search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+params.Search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "users.name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "users.email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "transactions.order_ref")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "transactions.transaction_hash"),
			pattern, pattern, pattern, pattern,
		)
	}
	if params.Status != "all" {
		q = q.Where("transactions.status = ?", params.Status)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("admin transactions: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var transactions []models.Transaction
	if errFind := q.Preload("User").Preload("Subscription").
		Order("transactions.created_at DESC").
		Offset(params.offset()).Limit(params.Limit).
		Find(&transactions).Error; errFind != nil {
		log.WithError(errFind).Error("admin transactions: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]gin.H, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, transactionView(t))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": out,
		"pagination":   params.pagination(total),
	})
}

// patchTransactionRequest defines the request body for transaction mutations.
type patchTransactionRequest struct {
	TransactionID   uint64 `json:"transactionId"`
	Action          string `json:"action"`
	NewStatus       string `json:"newStatus"`
	TransactionHash string `json:"transactionHash"`
}

// Patch applies an updateStatus/updateHash/approve/reject action. Approve runs
// the atomic status flip in the subscription package; the rest are single-row
// writes.
func (h *TransactionAdminHandler) Patch(c *gin.Context) {
	var body patchTransactionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.TransactionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	ctx := c.Request.Context()

	switch body.Action {
	case "updateStatus":
		status := models.TransactionStatus(strings.TrimSpace(body.NewStatus))
		if !models.ValidTransactionStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		h.singleUpdate(c, body.TransactionID, map[string]any{"status": status}, body.Action)
	case "updateHash":
		h.singleUpdate(c, body.TransactionID, map[string]any{"transaction_hash": strings.TrimSpace(body.TransactionHash)}, body.Action)
	case "approve":
		if _, errApprove := subscription.Approve(ctx, h.db, body.TransactionID); errApprove != nil {
			if errors.Is(errApprove, subscription.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
				return
			}
			log.WithError(errApprove).Error("admin transactions: approve failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		h.respondWithTransaction(c, body.TransactionID, body.Action)
	case "reject":
		if _, errReject := subscription.Reject(ctx, h.db, body.TransactionID); errReject != nil {
			if errors.Is(errReject, subscription.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
				return
			}
			log.WithError(errReject).Error("admin transactions: reject failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		h.respondWithTransaction(c, body.TransactionID, body.Action)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

// singleUpdate applies one unconditional column write and responds.
func (h *TransactionAdminHandler) singleUpdate(c *gin.Context, id uint64, updates map[string]any, action string) {
	res := h.db.WithContext(c.Request.Context()).Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		log.WithError(res.Error).Error("admin transactions: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	h.respondWithTransaction(c, id, action)
}

// respondWithTransaction reloads the row with its relations and responds.
func (h *TransactionAdminHandler) respondWithTransaction(c *gin.Context, id uint64, action string) {
	var txn models.Transaction
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("User").Preload("Subscription").
		First(&txn, id).Error; errFind != nil {
		log.WithError(errFind).Error("admin transactions: reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Transaction " + action + " successful",
		"transaction": transactionView(txn),
	})
}
