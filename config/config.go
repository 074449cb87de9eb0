package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DB             DBConfig
	Auth           AuthConfig
	Redis          RedisConfig
	DefaultAccount string
	RateLimit      string
	LogLevel       string
}

type DBConfig struct {
	Driver string // sqlite or postgres
	Path   string
	URL    string
}

type AuthConfig struct {
	User string
	Pass string
}

// Load reads .env when present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return Config{
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", "./data/ledger.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			User: getEnv("AUTH_USER", ""),
			Pass: getEnv("AUTH_PASS", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		DefaultAccount: getEnv("DEFAULT_ACCOUNT", "default"),
		RateLimit:      getEnv("RATE_LIMIT", "120-M"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
