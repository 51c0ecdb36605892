package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/freedomgate/portal/internal/db"
	"github.com/freedomgate/portal/internal/models"
)

// StatsHandler serves the admin dashboard aggregates.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// monthRevenueRow receives one bucket of the revenue aggregation.
type monthRevenueRow struct {
	Month   string
	Revenue float64
}

// Dashboard returns overview counts, recent activity, and the 12-month
// revenue series.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	oneYearAgo := now.AddDate(-1, 0, 0)

	var (
		totalUsers      int64
		activeSubs      int64
		expiredSubs     int64
		recentUsers     int64
		recentCompleted int64
		pendingTxns     int64
		completedTxns   int64
		totalRevenue    float64
	)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&totalUsers, h.db.WithContext(ctx).Model(&models.User{})},
		{&activeSubs, h.db.WithContext(ctx).Model(&models.Subscription{}).Where("status = ?", models.SubscriptionActive)},
		{&expiredSubs, h.db.WithContext(ctx).Model(&models.Subscription{}).Where("status = ?", models.SubscriptionExpired)},
		{&recentUsers, h.db.WithContext(ctx).Model(&models.User{}).Where("created_at >= ?", thirtyDaysAgo)},
		{&recentCompleted, h.db.WithContext(ctx).Model(&models.Transaction{}).Where("created_at >= ? AND status = ?", thirtyDaysAgo, models.TransactionCompleted)},
		{&pendingTxns, h.db.WithContext(ctx).Model(&models.Transaction{}).Where("status = ?", models.TransactionPending)},
		{&completedTxns, h.db.WithContext(ctx).Model(&models.Transaction{}).Where("status = ?", models.TransactionCompleted)},
	}
	for _, item := range counts {
		if errCount := item.query.Count(item.dest).Error; errCount != nil {
			log.WithError(errCount).Error("admin stats: count failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if errSum := h.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ?", models.TransactionCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; errSum != nil {
		log.WithError(errSum).Error("admin stats: revenue sum failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var recentUserRows []models.User
	if errUsers := h.db.WithContext(ctx).
		Order("created_at DESC").Limit(5).
		Find(&recentUserRows).Error; errUsers != nil {
		log.WithError(errUsers).Error("admin stats: recent users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	recentUsersOut := make([]gin.H, 0, len(recentUserRows))
	for _, u := range recentUserRows {
		recentUsersOut = append(recentUsersOut, gin.H{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"createdAt": u.CreatedAt,
		})
	}

	var recentTxnRows []models.Transaction
	if errTxns := h.db.WithContext(ctx).Preload("User").
		Order("created_at DESC").Limit(5).
		Find(&recentTxnRows).Error; errTxns != nil {
		log.WithError(errTxns).Error("admin stats: recent transactions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	recentTxnsOut := make([]gin.H, 0, len(recentTxnRows))
	for _, t := range recentTxnRows {
		recentTxnsOut = append(recentTxnsOut, gin.H{
			"id":        t.ID,
			"amount":    t.Amount,
			"currency":  t.Currency,
			"status":    t.Status,
			"orderRef":  t.OrderRef,
			"createdAt": t.CreatedAt,
			"user":      gin.H{"name": t.User.Name, "email": t.User.Email},
		})
	}

	monthExpr := dbutil.MonthBucketExpr(h.db, "created_at")
	var revenueRows []monthRevenueRow
	if errRevenue := h.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(monthExpr+" AS month, COALESCE(SUM(amount), 0) AS revenue").
		Where("status = ? AND created_at >= ?", models.TransactionCompleted, oneYearAgo).
		Group(monthExpr).
		Scan(&revenueRows).Error; errRevenue != nil {
		log.WithError(errRevenue).Error("admin stats: revenue series failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	revenueByBucket := make(map[string]float64, len(revenueRows))
	for _, row := range revenueRows {
		revenueByBucket[row.Month] = row.Revenue
	}

	// Oldest month first, zero-filled for months without revenue.
	monthly := make([]gin.H, 0, 12)
	for i := 11; i >= 0; i-- {
		bucket := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthly = append(monthly, gin.H{
			"month":   bucket.Format("Jan 2006"),
			"revenue": revenueByBucket[bucket.Format("2006-01")],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"overview": gin.H{
				"totalUsers":               totalUsers,
				"totalActiveSubscriptions": activeSubs,
				"totalRevenue":             totalRevenue,
				"recentUsers":              recentUsers,
				"recentTransactions":       recentCompleted,
			},
			"subscriptions": gin.H{
				"active":  activeSubs,
				"expired": expiredSubs,
				"total":   activeSubs + expiredSubs,
			},
			"transactions": gin.H{
				"pending":   pendingTxns,
				"completed": completedTxns,
				"total":     pendingTxns + completedTxns,
			},
			"recentActivity": gin.H{
				"users":        recentUsersOut,
				"transactions": recentTxnsOut,
			},
			"charts": gin.H{
				"monthlyRevenue": monthly,
			},
		},
	})
}
