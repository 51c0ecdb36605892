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
)

// UserAdminHandler manages the admin user listing and mutations.
type UserAdminHandler struct {
	db *gorm.DB
}

// NewUserAdminHandler constructs a UserAdminHandler.
func NewUserAdminHandler(db *gorm.DB) *UserAdminHandler {
	return &UserAdminHandler{db: db}
}

// List returns users with pagination, search, and verification filter.
// `status` takes all|verified|unverified.
func (h *UserAdminHandler) List(c *gin.Context) {
	params := parseListingParams(c)
	ctx := c.Request.Context()

	q := h.db.WithContext(ctx).Model(&models.User{})
	if params.Search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+params.Search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "email"),
			pattern, pattern,
		)
	}
	switch params.Status {
	case "verified":
		q = q.Where("is_verified = ?", true)
	case "unverified":
		q = q.Where("is_verified = ?", false)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("admin users: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var users []models.User
	if errFind := q.Order("created_at DESC").
		Offset(params.offset()).Limit(params.Limit).
		Find(&users).Error; errFind != nil {
		log.WithError(errFind).Error("admin users: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		// Active subscription and transaction count, per listed row. The page
		// is small so the extra queries stay bounded by the limit.
		var sub models.Subscription
		var subData gin.H
		errSub := h.db.WithContext(ctx).
			Where("user_id = ? AND status = ?", u.ID, models.SubscriptionActive).
			Order("created_at DESC").
			First(&sub).Error
		if errSub == nil {
			subData = gin.H{
				"id":        sub.ID,
				"planId":    sub.PlanID,
				"status":    sub.Status,
				"startDate": sub.StartDate,
				"endDate":   sub.EndDate,
			}
		}

		var txCount int64
		if errTxCount := h.db.WithContext(ctx).Model(&models.Transaction{}).
			Where("user_id = ?", u.ID).Count(&txCount).Error; errTxCount != nil {
			log.WithError(errTxCount).Error("admin users: transaction count failed")
		}

		out = append(out, gin.H{
			"id":               u.ID,
			"name":             u.Name,
			"email":            u.Email,
			"isVerified":       u.IsVerified,
			"language":         u.Language,
			"createdAt":        u.CreatedAt,
			"updatedAt":        u.UpdatedAt,
			"subscription":     subData,
			"transactionCount": txCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"users":      out,
		"pagination": params.pagination(total),
	})
}

// patchUserRequest defines the request body for user mutations.
type patchUserRequest struct {
	UserID uint64 `json:"userId"`
	Action string `json:"action"`
	Data   struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Language string `json:"language"`
	} `json:"data"`
}

// Patch applies a verify/unverify/update action to a user.
func (h *UserAdminHandler) Patch(c *gin.Context) {
	var body patchUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.UserID == 0 || body.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, body.UserID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.WithError(errFind).Error("admin users: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]any{}
	switch body.Action {
	case "verify":
		updates["is_verified"] = true
	case "unverify":
		updates["is_verified"] = false
	case "update":
		if name := strings.TrimSpace(body.Data.Name); name != "" {
			updates["name"] = name
		}
		if email := strings.TrimSpace(body.Data.Email); email != "" {
			updates["email"] = strings.ToLower(email)
		}
		if lang := strings.TrimSpace(body.Data.Language); lang != "" {
			updates["language"] = lang
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	if errUpdate := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("admin users: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User " + body.Action + " successful",
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"isVerified": user.IsVerified,
			"language":   user.Language,
		},
	})
}
