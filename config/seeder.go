package config

import (
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SeedRooms creates the default public rooms if they are missing.
func SeedRooms(db *gorm.DB, log zerolog.Logger) {
	rooms := []models.ChatRoom{
		{ID: uuid.NewString(), Name: "General", Description: "Open discussion", IsPublic: true, MaxUsers: 100},
		{ID: uuid.NewString(), Name: "Random", Description: "Anything goes", IsPublic: true, MaxUsers: 100},
	}

	for _, room := range rooms {
		var existing models.ChatRoom
		err := db.Where("name = ?", room.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&room).Error; err != nil {
				log.Error().Err(err).Str("room", room.Name).Msg("failed to seed room")
				continue
			}
			log.Info().Str("room", room.Name).Str("id", room.ID).Msg("room seeded")
		}
	}
}
