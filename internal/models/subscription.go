package models

import "time"

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

// SubscriptionStatus constants define subscription lifecycle states.
const (
	// SubscriptionActive marks a subscription currently in service.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionExpired marks a subscription past its end date.
	SubscriptionExpired SubscriptionStatus = "expired"
	// SubscriptionPending marks a subscription awaiting payment.
	SubscriptionPending SubscriptionStatus = "pending"
	// SubscriptionCancelled marks a subscription cancelled by an admin.
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// ValidSubscriptionStatus reports whether s is a known subscription status.
func ValidSubscriptionStatus(s SubscriptionStatus) bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionPending, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription records one purchased service period for a user. PlanID
// references the static plan catalog, not a database row, so catalog entries
// can disappear without breaking referential integrity.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user record.

	PlanID string             `gorm:"type:text;not null"`       // Catalog plan identifier.
	Status SubscriptionStatus `gorm:"type:text;not null;index"` // Current lifecycle state.

	StartDate time.Time `gorm:"not null"` // Service period start.
	EndDate   time.Time `gorm:"not null"` // Service period end.

	AutoRenew bool `gorm:"not null;default:false"` // Renewal preference flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
