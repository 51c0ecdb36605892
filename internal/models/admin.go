package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminUser represents a back-office operator account. Admins live in a
// separate identity space from customers and never share tokens with them.
type AdminUser struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email, stored lowercase.
	Name     string `gorm:"type:text;not null"`             // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Role        string         `gorm:"type:text;not null;default:admin"` // Role label, e.g. superadmin.
	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Granted permission list.

	IsActive bool `gorm:"not null;default:true"` // Login only succeeds while active.

	TOTPSecret        string `gorm:"type:text"` // Optional TOTP secret for a second login factor.
	TOTPPendingSecret string `gorm:"type:text"` // Secret awaiting code confirmation during enrollment.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
