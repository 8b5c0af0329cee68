package database

import (
	"fmt"

	"bookly/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQL opens a GORM connection for the given driver ("sqlite" or "mysql").
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect via %s: %w", driver, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the booking tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Booking{},
		&models.DailyBookingCount{},
		&models.RateLimitRecord{},
	); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
