package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/config"
	"github.com/freedomgate/portal/internal/http/api"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/security"
)

// Credentials of the bootstrap admin created by Seed.
const (
	seedAdminName     = "Admin"
	seedAdminEmail    = "admin@freedomgate.com"
	seedAdminPassword = "Admin123!"
	seedAdminRole     = "superadmin"
)

// AuthHandler manages admin login, logout, profile, and bootstrap endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg config.Config
}

// NewAuthHandler constructs an admin AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// adminLoginRequest defines the request body for admin login.
type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

// Login verifies admin credentials and issues a token cookie. Accounts with a
// TOTP secret must also present a valid code.
func (h *AuthHandler) Login(c *gin.Context) {
	var body adminLoginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	var admin models.AdminUser
	errFind := h.db.WithContext(c.Request.Context()).
		Where("email = ? AND is_active = ?", email, true).
		First(&admin).Error
	if errFind != nil || !security.CheckPassword(admin.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if admin.TOTPSecret != "" && !security.ValidateTOTP(admin.TOTPSecret, strings.TrimSpace(body.TOTPCode)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	token, errToken := security.IssueAdminToken(h.cfg.JWT.Secret, h.cfg.JWT.Expiry, admin.ID, admin.Email, admin.Name, admin.Role)
	if errToken != nil {
		log.WithError(errToken).Error("admin auth: issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	api.SetTokenCookie(c, api.AdminCookieName, token, int(h.cfg.JWT.Expiry.Seconds()), h.cfg.Production())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// Logout clears the admin token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	api.ClearTokenCookie(c, api.AdminCookieName, h.cfg.Production())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me returns the signed-in admin's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	adminID := c.GetUint64("adminID")

	var admin models.AdminUser
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_active = ?", adminID, true).
		First(&admin).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		log.WithError(errFind).Error("admin auth: load profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"admin": gin.H{
			"id":        admin.ID,
			"name":      admin.Name,
			"email":     admin.Email,
			"role":      admin.Role,
			"isActive":  admin.IsActive,
			"createdAt": admin.CreatedAt,
			"updatedAt": admin.UpdatedAt,
		},
	})
}

// Seed creates the bootstrap admin account. It refuses to run once any admin
// exists, so the endpoint is only open on a fresh install.
func (h *AuthHandler) Seed(c *gin.Context) {
	ctx := c.Request.Context()

	var existing int64
	if errCount := h.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&existing).Error; errCount != nil {
		log.WithError(errCount).Error("admin seed: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin users already exist. This endpoint can only be used once."})
		return
	}

	hash, errHash := security.HashPassword(seedAdminPassword)
	if errHash != nil {
		log.WithError(errHash).Error("admin seed: hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	admin := models.AdminUser{
		Name:     seedAdminName,
		Email:    seedAdminEmail,
		Password: hash,
		Role:     seedAdminRole,
		IsActive: true,
	}
	if errCreate := h.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		log.WithError(errCreate).Error("admin seed: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Default admin user created successfully",
		"admin": gin.H{
			"id":              admin.ID,
			"name":            admin.Name,
			"email":           admin.Email,
			"role":            admin.Role,
			"createdAt":       admin.CreatedAt,
			"defaultPassword": seedAdminPassword,
		},
	})
}
