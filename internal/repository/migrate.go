package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every table this package
// owns. Used by cmd/seed and the test harnesses; production runs against an
// already-provisioned PostgreSQL schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&taskModel{},
		&notificationModel{},
		&commentModel{},
	)
}
