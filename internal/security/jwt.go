package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the `kind` claim. User and admin tokens share a
// signing secret; the kind claim is what keeps them from being interchangeable.
const (
	TokenKindUser  = "user"
	TokenKindAdmin = "admin"
)

// ErrWrongTokenKind indicates a structurally valid token of the other kind.
var ErrWrongTokenKind = errors.New("security: wrong token kind")

// UserClaims carries the identity of a signed-in customer.
type UserClaims struct {
	UserID uint64 `json:"-"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// AdminClaims carries the identity of a signed-in admin.
type AdminClaims struct {
	AdminID uint64 `json:"-"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Kind    string `json:"kind"`
	jwt.RegisteredClaims
}

// IssueUserToken signs a user token with the given expiry.
func IssueUserToken(secret string, expiry time.Duration, userID uint64, email, name string) (string, error) {
	now := time.Now().UTC()
	claims := UserClaims{
		Email: email,
		Name:  name,
		Kind:  TokenKindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// IssueAdminToken signs an admin token with the given expiry.
func IssueAdminToken(secret string, expiry time.Duration, adminID uint64, email, name, role string) (string, error) {
	now := time.Now().UTC()
	claims := AdminClaims{
		Email: email,
		Name:  name,
		Role:  role,
		Kind:  TokenKindAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseUserToken verifies a user token and returns its claims.
func ParseUserToken(secret, token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parseInto(secret, token, claims); err != nil {
		return nil, err
	}
	if claims.Kind != TokenKindUser {
		return nil, ErrWrongTokenKind
	}
	id, errParse := strconv.ParseUint(claims.Subject, 10, 64)
	if errParse != nil {
		return nil, fmt.Errorf("security: invalid subject: %w", errParse)
	}
	claims.UserID = id
	return claims, nil
}

// ParseAdminToken verifies an admin token and returns its claims.
func ParseAdminToken(secret, token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parseInto(secret, token, claims); err != nil {
		return nil, err
	}
	if claims.Kind != TokenKindAdmin {
		return nil, ErrWrongTokenKind
	}
	id, errParse := strconv.ParseUint(claims.Subject, 10, 64)
	if errParse != nil {
		return nil, fmt.Errorf("security: invalid subject: %w", errParse)
	}
	claims.AdminID = id
	return claims, nil
}

// parseInto verifies signature, algorithm, and expiry.
func parseInto(secret, token string, claims jwt.Claims) error {
	parsed, errParse := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil {
		return errParse
	}
	if !parsed.Valid {
		return errors.New("security: invalid token")
	}
	return nil
}
