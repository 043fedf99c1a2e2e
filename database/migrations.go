package database

import (
	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/models"

	"gorm.io/gorm"
)

// RunMigrations runs database migrations to ensure tables are up to date
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Session{},
	)
	if err != nil {
		applog.Get().Error().Err(err).Msg("migration failed")
		return err
	}

	return nil
}
