package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	AppPort string
	Host    string
	Env     string

	// Storage
	DatabaseURL string // MySQL DSN; falls back to sqlite when empty
	SQLitePath  string
	RedisURL    string

	// JWT settings
	JWTSecret string

	// OTP mail delivery
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func LoadConfig() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	config := &Config{
		AppPort: getEnv("PORT", "8000"),
		Host:    getEnv("HOST", "0.0.0.0"),
		Env:     getEnv("ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "milikoz.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "no-reply@example.com"),
	}

	if config.Env == "production" {
		if config.JWTSecret == "" {
			panic("JWT_SECRET is required in production")
		}
	}

	return config
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
