package config

import (
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, log zerolog.Logger) error {
	// Migrate the schema
	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Book{},
		&models.Product{},
		&models.Interaction{},
		&models.ChatRoom{},
		&models.ChatUser{},
		&models.Message{},
		&models.ActiveConnection{},
	)

	if err != nil {
		log.Error().Err(err).Msg("failed to migrate database schema")
		return err
	}

	// Stale connection rows from a previous run would haunt every presence
	// query, so presence state starts clean on boot.
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.ActiveConnection{}).Error; err != nil {
		log.Error().Err(err).Msg("failed to clear stale connections")
		return err
	}
	if err := db.Model(&models.ChatUser{}).Where("is_online = ?", true).
		Updates(map[string]interface{}{"is_online": false, "current_room_id": nil}).Error; err != nil {
		log.Error().Err(err).Msg("failed to reset online flags")
		return err
	}

	log.Info().Msg("database migrations completed")
	return nil
}
