package models

import "time"

// User represents a customer account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email, stored lowercase.
	Name     string `gorm:"type:text;not null"`             // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	IsVerified bool   `gorm:"not null;default:false"`        // Whether the account email is verified.
	Language   string `gorm:"type:text;not null;default:en"` // Preferred UI language code.

	ResetToken       string     `gorm:"type:text"` // Pending password reset token.
	ResetTokenExpiry *time.Time // Reset token expiry, nil when no reset is pending.

	Subscriptions []Subscription `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owned subscriptions.
	Transactions  []Transaction  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owned transactions.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
