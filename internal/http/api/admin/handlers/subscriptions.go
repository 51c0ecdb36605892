package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/freedomgate/portal/internal/db"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/plans"
)

// SubscriptionAdminHandler manages the admin subscription listing and mutations.
type SubscriptionAdminHandler struct {
	db *gorm.DB
}

// NewSubscriptionAdminHandler constructs a SubscriptionAdminHandler.
func NewSubscriptionAdminHandler(db *gorm.DB) *SubscriptionAdminHandler {
	return &SubscriptionAdminHandler{db: db}
}

// List returns subscriptions with pagination, owner/plan search, and status filter.
func (h *SubscriptionAdminHandler) List(c *gin.Context) {
	params := parseListingParams(c)
	ctx := c.Request.Context()

	q := h.db.WithContext(ctx).Model(&models.Subscription{}).
		Joins("JOIN users ON users.id = subscriptions.user_id")
	if params.Search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+params.Search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "users.name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "users.email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "subscriptions.plan_id"),
			pattern, pattern, pattern,
		)
	}
	if params.Status != "all" {
		q = q.Where("subscriptions.status = ?", params.Status)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("admin subscriptions: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var subs []models.Subscription
	if errFind := q.Preload("User").
		Order("subscriptions.created_at DESC").
		Offset(params.offset()).Limit(params.Limit).
		Find(&subs).Error; errFind != nil {
		log.WithError(errFind).Error("admin subscriptions: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]gin.H, 0, len(subs))
	for _, s := range subs {
		plan, ok := plans.Find(s.PlanID)
		if !ok {
			plan = plans.Unknown(s.PlanID)
		}
		out = append(out, gin.H{
			"id":        s.ID,
			"planId":    s.PlanID,
			"plan":      plan,
			"status":    s.Status,
			"startDate": s.StartDate,
			"endDate":   s.EndDate,
			"autoRenew": s.AutoRenew,
			"createdAt": s.CreatedAt,
			"user": gin.H{
				"id":    s.User.ID,
				"name":  s.User.Name,
				"email": s.User.Email,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"subscriptions": out,
		"pagination":    params.pagination(total),
	})
}

// patchSubscriptionRequest defines the request body for subscription mutations.
type patchSubscriptionRequest struct {
	SubscriptionID uint64 `json:"subscriptionId"`
	Action         string `json:"action"`
	NewStatus      string `json:"newStatus"`
	NewPlan        string `json:"newPlan"`
}

// Patch applies an updateStatus/updatePlan/cancel action to a subscription.
// These are deliberate single-row writes with no cross-entity checks; the
// admin owns the consequences.
func (h *SubscriptionAdminHandler) Patch(c *gin.Context) {
	var body patchSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.SubscriptionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	ctx := c.Request.Context()

	var sub models.Subscription
	if errFind := h.db.WithContext(ctx).Preload("User").First(&sub, body.SubscriptionID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		log.WithError(errFind).Error("admin subscriptions: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]any{}
	switch body.Action {
	case "updateStatus":
		status := models.SubscriptionStatus(strings.TrimSpace(body.NewStatus))
		if !models.ValidSubscriptionStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		updates["status"] = status
	case "updatePlan":
		if _, ok := plans.Find(strings.TrimSpace(body.NewPlan)); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
			return
		}
		updates["plan_id"] = strings.TrimSpace(body.NewPlan)
	case "cancel":
		updates["status"] = models.SubscriptionCancelled
		updates["end_date"] = time.Now().UTC()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	if errUpdate := h.db.WithContext(ctx).Model(&sub).Updates(updates).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("admin subscriptions: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Subscription " + body.Action + " successful",
		"subscription": gin.H{
			"id":        sub.ID,
			"planId":    sub.PlanID,
			"status":    sub.Status,
			"startDate": sub.StartDate,
			"endDate":   sub.EndDate,
			"user": gin.H{
				"id":    sub.User.ID,
				"name":  sub.User.Name,
				"email": sub.User.Email,
			},
		},
	})
}
