package database

import (
	"fmt"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the durable store. A Postgres DSN takes precedence when
// configured; otherwise a local sqlite file is used so the service works
// out of the box and survives restarts.
func Connect(databaseURL, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqlitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the two durable tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserConfig{},
		&models.Prediction{},
	)
}
