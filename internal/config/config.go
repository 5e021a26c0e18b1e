package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Engine EngineConfig
	Redis  RedisConfig
}

// EngineConfig holds resolution engine configuration
type EngineConfig struct {
	// Seed drives every committed roll; the same seed and requests
	// reproduce the same combat
	Seed int64
	// MaxReactionDepth bounds nested interrupt windows
	MaxReactionDepth int
}

// RedisConfig holds Redis-specific configuration for snapshot storage
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Engine: EngineConfig{
			Seed:             getEnvAsInt64OrDefault("SKIRMISH_SEED", 1),
			MaxReactionDepth: getEnvAsIntOrDefault("SKIRMISH_MAX_REACTION_DEPTH", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
