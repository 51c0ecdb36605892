// Package admin registers the back-office HTTP surface.
package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/config"
	"github.com/freedomgate/portal/internal/http/api"
	"github.com/freedomgate/portal/internal/http/api/admin/handlers"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/ratelimit"
	"github.com/freedomgate/portal/internal/security"
)

// Context keys set by the admin auth middleware.
const (
	CtxAdminID    = "adminID"
	CtxAdminEmail = "adminEmail"
	CtxAdminRole  = "adminRole"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, conn *gorm.DB, cfg config.Config, limiter *ratelimit.Manager) {
	if r == nil || conn == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(conn)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/api/admin")

	authHandler := handlers.NewAuthHandler(conn, cfg)
	adminGroup.POST("/login", loginRateLimitMiddleware(limiter), authHandler.Login)
	adminGroup.POST("/logout", authHandler.Logout)
	adminGroup.POST("/seed", authHandler.Seed)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(conn, cfg.JWT))
	authed.GET("/me", authHandler.Me)

	mfaHandler := handlers.NewMFAHandler(conn)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	userHandler := handlers.NewUserAdminHandler(conn)
	authed.GET("/users", userHandler.List)
	authed.PATCH("/users", userHandler.Patch)

	subHandler := handlers.NewSubscriptionAdminHandler(conn)
	authed.GET("/subscriptions", subHandler.List)
	authed.PATCH("/subscriptions", subHandler.Patch)

	txHandler := handlers.NewTransactionAdminHandler(conn)
	authed.GET("/transactions", txHandler.List)
	authed.PATCH("/transactions", txHandler.Patch)

	statsHandler := handlers.NewStatsHandler(conn)
	authed.GET("/dashboard/stats", statsHandler.Dashboard)
}

// adminAuthMiddleware validates admin tokens and loads admin context. The
// admin record is re-checked on every request so deactivation takes effect
// before the token expires.
func adminAuthMiddleware(conn *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := api.TokenFromRequest(c, api.AdminCookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var admin models.AdminUser
		if errFind := conn.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !admin.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin disabled"})
			return
		}

		c.Set(CtxAdminID, admin.ID)
		c.Set(CtxAdminEmail, admin.Email)
		c.Set(CtxAdminRole, admin.Role)
		c.Next()
	}
}

// loginRateLimitMiddleware throttles credential guessing per client IP.
func loginRateLimitMiddleware(limiter *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.LoginKey(c.ClientIP()))
		if errAllow == nil && !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again shortly"})
			return
		}
		c.Next()
	}
}
