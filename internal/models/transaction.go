package models

import "time"

// TransactionStatus represents the lifecycle state of a payment attempt.
type TransactionStatus string

// TransactionStatus constants define payment lifecycle states.
const (
	// TransactionPending marks a payment awaiting confirmation.
	TransactionPending TransactionStatus = "pending"
	// TransactionCompleted marks a confirmed payment.
	TransactionCompleted TransactionStatus = "completed"
	// TransactionFailed marks a rejected or failed payment.
	TransactionFailed TransactionStatus = "failed"
	// TransactionExpired marks a payment window that lapsed unpaid.
	TransactionExpired TransactionStatus = "expired"
)

// ValidTransactionStatus reports whether s is a known transaction status.
func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionExpired:
		return true
	}
	return false
}

// Transaction records one payment attempt. The subscription link is patched
// in after both rows exist; OrderRef is the idempotency anchor for the attempt.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user record.

	SubscriptionID *uint64       `gorm:"index"`                                                  // Linked subscription ID, nil until reconciled.
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:SET NULL"` // Linked subscription record.

	Amount   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Payment amount.
	Currency string  `gorm:"type:text;not null;default:USDT"`       // Payment currency symbol.

	PaymentMethod   string `gorm:"type:text;not null"` // Catalog payment method identifier.
	WalletAddress   string `gorm:"type:text"`          // Destination wallet address.
	TransactionHash string `gorm:"type:text"`          // Client-asserted on-chain hash, unverified.

	Status   TransactionStatus `gorm:"type:text;not null;index"`       // Current lifecycle state.
	OrderRef string            `gorm:"type:text;not null;uniqueIndex"` // Globally unique order reference.

	ExpiresAt time.Time `gorm:"not null"` // Payment window expiry; stored, not enforced.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
