package config

import (
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDatabase opens the configured database. A MySQL DSN in DATABASE_URL
// wins; otherwise a local sqlite file is used so the server runs without any
// external service.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return gorm.Open(mysql.Open(cfg.DatabaseURL), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
}
