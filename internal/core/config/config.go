package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	DBMaxConns         int32
	StatementTimeoutMS int
	WebhookURL         string
	WebhookSecret      string
	Env                string
}

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() *Config {
	// The .env file might not exist in production, which is fine
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:               getEnv("PORT", "9999"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		StatementTimeoutMS: getEnvInt("STATEMENT_TIMEOUT_MS", 5000),
		WebhookURL:         getEnv("WEBHOOK_URL", ""),
		WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
		Env:                getEnv("ENV", "development"),
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer env value, using fallback", "key", key, "value", value)
		return fallback
	}
	return n
}
