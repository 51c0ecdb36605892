package db

import (
	"fmt"

	"github.com/freedomgate/portal/internal/models"
	"gorm.io/gorm"
)

// Migrate runs schema migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.Subscription{},
		&models.Transaction{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// At most one active subscription per user. The reconciliation workflow
	// extends the existing active row instead of inserting a second one; this
	// index turns the remaining read-then-write race into a rollback.
	if errIndex := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_one_active
		ON subscriptions (user_id)
		WHERE status = 'active'
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create active subscription index: %w", errIndex)
	}

	return nil
}
