package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/security"
)

// MFAHandler manages TOTP enrollment for the signed-in admin. Enrollment is
// two-step: a prepared secret only becomes active once a valid code confirms
// the authenticator holds it.
type MFAHandler struct {
	db *gorm.DB
}

// NewMFAHandler constructs an MFAHandler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db}
}

// loadAdmin fetches the signed-in admin row or writes the error response.
func (h *MFAHandler) loadAdmin(c *gin.Context) (models.AdminUser, bool) {
	adminID := c.GetUint64("adminID")

	var admin models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return models.AdminUser{}, false
		}
		log.WithError(errFind).Error("admin mfa: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.AdminUser{}, false
	}
	return admin, true
}

// PrepareTOTP generates a pending secret for the signed-in admin.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := h.loadAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPSecret != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor authentication is already enabled"})
		return
	}

	secret, errGen := security.GenerateTOTPSecret(admin.Email)
	if errGen != nil {
		log.WithError(errGen).Error("admin mfa: generate secret failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if errSave := h.db.WithContext(c.Request.Context()).Model(&admin).
		Update("totp_pending_secret", secret).Error; errSave != nil {
		log.WithError(errSave).Error("admin mfa: store pending secret failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"secret":  secret,
		"issuer":  "FreedomGate",
		"account": admin.Email,
	})
}

// confirmTOTPRequest defines the request body for enrollment confirmation.
type confirmTOTPRequest struct {
	Code string `json:"code"`
}

// ConfirmTOTP activates the pending secret once a valid code proves the
// authenticator was set up.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	admin, ok := h.loadAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPPendingSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No pending two-factor setup"})
		return
	}
	if !security.ValidateTOTP(admin.TOTPPendingSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	if errSave := h.db.WithContext(c.Request.Context()).Model(&admin).Updates(map[string]any{
		"totp_secret":         admin.TOTPPendingSecret,
		"totp_pending_secret": "",
	}).Error; errSave != nil {
		log.WithError(errSave).Error("admin mfa: activate secret failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Two-factor authentication enabled"})
}

// DisableTOTP removes the second factor from the signed-in admin.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	admin, ok := h.loadAdmin(c)
	if !ok {
		return
	}

	if errSave := h.db.WithContext(c.Request.Context()).Model(&admin).Updates(map[string]any{
		"totp_secret":         "",
		"totp_pending_secret": "",
	}).Error; errSave != nil {
		log.WithError(errSave).Error("admin mfa: disable failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Two-factor authentication disabled"})
}
