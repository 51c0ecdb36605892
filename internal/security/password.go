// Package security provides password hashing, signed token issuance and
// verification, and the optional TOTP second factor for admin logins.
package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost is the fixed work factor for stored password hashes.
const bcryptCost = 12

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
