package database

import (
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Item{},
		&models.Message{},
		&models.Notification{},
		&models.Custodian{},
		&models.DropoffRequest{},
		&models.PickupRequest{},
	)
}
