package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/config"
	"github.com/freedomgate/portal/internal/http/api"
	"github.com/freedomgate/portal/internal/models"
	"github.com/freedomgate/portal/internal/security"
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// passwordSpecials are the accepted special characters for passwords.
const passwordSpecials = "@$!%*?&"

// AuthHandler manages signup, login, logout, and profile endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// signupRequest defines the request body for account creation.
type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// validateSignup applies the signup field rules and collects per-field errors.
func validateSignup(body signupRequest) []api.FieldError {
	var details []api.FieldError

	name := strings.TrimSpace(body.Name)
	switch {
	case len(name) < 2:
		details = append(details, api.FieldError{Field: "name", Message: "Name must be at least 2 characters"})
	case len(name) > 50:
		details = append(details, api.FieldError{Field: "name", Message: "Name must be less than 50 characters"})
	case !nameRe.MatchString(name):
		details = append(details, api.FieldError{Field: "name", Message: "Name can only contain letters and spaces"})
	}

	email := strings.TrimSpace(body.Email)
	switch {
	case email == "":
		details = append(details, api.FieldError{Field: "email", Message: "Email is required"})
	case len(email) > 100:
		details = append(details, api.FieldError{Field: "email", Message: "Email must be less than 100 characters"})
	case !emailRe.MatchString(email):
		details = append(details, api.FieldError{Field: "email", Message: "Please enter a valid email address"})
	}

	if msg := passwordMessage(body.Password); msg != "" {
		details = append(details, api.FieldError{Field: "password", Message: msg})
	}
	if body.Password != body.ConfirmPassword {
		details = append(details, api.FieldError{Field: "confirmPassword", Message: "Passwords don't match"})
	}
	return details
}

// passwordMessage returns the failure message for an invalid password, or "".
func passwordMessage(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	if len(password) > 100 {
		return "Password must be less than 100 characters"
	}
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return "Password must contain at least one lowercase letter, one uppercase letter, one number, and one special character"
	}
	return ""
}

// Signup creates a user account and issues a token cookie.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if details := validateSignup(body); len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		log.WithError(errHash).Error("signup: hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user := models.User{
		Email:    email,
		Name:     strings.TrimSpace(body.Name),
		Password: hash,
		Language: "en",
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(errCreate.Error()), "unique") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		log.WithError(errCreate).Error("signup: create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, "Account created", user)
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a token cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var details []api.FieldError
	if strings.TrimSpace(body.Email) == "" {
		details = append(details, api.FieldError{Field: "email", Message: "Email is required"})
	}
	if body.Password == "" {
		details = append(details, api.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if errFind != nil || !security.CheckPassword(user.Password, body.Password) {
		// Unknown email and wrong password answer identically.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

// respondWithToken issues a user token, sets the cookie, and writes the profile.
func (h *AuthHandler) respondWithToken(c *gin.Context, status int, message string, user models.User) {
	token, errToken := security.IssueUserToken(h.cfg.JWT.Secret, h.cfg.JWT.Expiry, user.ID, user.Email, user.Name)
	if errToken != nil {
		log.WithError(errToken).Error("auth: issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	api.SetTokenCookie(c, api.UserCookieName, token, int(h.cfg.JWT.Expiry.Seconds()), h.cfg.Production())

	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"isVerified": user.IsVerified,
			"language":   user.Language,
			"createdAt":  user.CreatedAt,
		},
	})
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	api.ClearTokenCookie(c, api.UserCookieName, h.cfg.Production())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint64("userID")

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.WithError(errFind).Error("auth: load profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"isVerified": user.IsVerified,
			"language":   user.Language,
			"createdAt":  user.CreatedAt,
			"updatedAt":  user.UpdatedAt,
		},
	})
}
