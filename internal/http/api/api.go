// Package api holds the plumbing shared by the front and admin HTTP surfaces:
// cookie names, cookie issuance, and token extraction.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Cookie names for the two token kinds. Which cookie a middleware reads is the
// first line of separation between the user and admin surfaces; the `kind`
// claim inside the token is the second.
const (
	UserCookieName  = "auth-token"
	AdminCookieName = "admin-token"
)

// SetTokenCookie writes an httpOnly token cookie. Secure is set in production;
// SameSite is always strict.
func SetTokenCookie(c *gin.Context, name, token string, maxAgeSeconds int, production bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, token, maxAgeSeconds, "/", "", production, true)
}

// ClearTokenCookie expires a token cookie.
func ClearTokenCookie(c *gin.Context, name string, production bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", production, true)
}

// TokenFromRequest extracts a token from the Authorization header, falling
// back to the named cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token
		}
	}
	token, errCookie := c.Cookie(cookieName)
	if errCookie != nil {
		return ""
	}
	return strings.TrimSpace(token)
}

// FieldError carries one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
