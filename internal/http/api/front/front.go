// Package front registers the customer-facing HTTP surface.
package front

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/config"
	"github.com/freedomgate/portal/internal/http/api"
	"github.com/freedomgate/portal/internal/http/api/front/handlers"
	"github.com/freedomgate/portal/internal/ratelimit"
	"github.com/freedomgate/portal/internal/security"
)

// Context keys set by the user auth middleware.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserName  = "userName"
)

// RegisterFrontRoutes registers customer routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, conn *gorm.DB, cfg config.Config, limiter *ratelimit.Manager) {
	if r == nil || conn == nil {
		return
	}

	apiGroup := r.Group("/api")

	authHandler := handlers.NewAuthHandler(conn, cfg)
	apiGroup.POST("/auth/signup", loginRateLimitMiddleware(limiter), authHandler.Signup)
	apiGroup.POST("/auth/login", loginRateLimitMiddleware(limiter), authHandler.Login)
	apiGroup.POST("/auth/logout", authHandler.Logout)

	planHandler := handlers.NewPlanHandler()
	apiGroup.GET("/plans", planHandler.List)

	subHandler := handlers.NewSubscriptionHandler(conn)
	// Cron-style entry point, unauthenticated on purpose: the sweep is bulk,
	// idempotent, and discloses nothing but a count.
	apiGroup.POST("/subscriptions/check-expiry", subHandler.CheckExpiry)

	authed := apiGroup.Group("")
	authed.Use(userAuthMiddleware(cfg.JWT))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/subscriptions", subHandler.Get)

	paymentHandler := handlers.NewPaymentHandler(conn)
	authed.POST("/payment/complete", paymentHandler.Complete)
}

// userAuthMiddleware validates user tokens and loads identity context.
func userAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := api.TokenFromRequest(c, api.UserCookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxUserName, claims.Name)
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
