package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	DBDSN    string

	// Redis is optional; an empty address disables the report cache.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
}

// Load reads settings from the environment, with a best-effort .env load
// first. Missing variables fall back to local-development defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		DBDSN:         getEnv("DB_DSN", "root:@tcp(localhost:3306)/banking_db?parseTime=true"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
