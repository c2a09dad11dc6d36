// Package config provides configuration for the reflection service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Generative backend
	GenAIURL     string
	GenAIAPIKey  string
	GenAIModel   string
	GenAITimeout time.Duration

	// Conversation budget
	MaxTurns int

	// Team session token verification
	TeamSessionSecret string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:       getEnv("DATABASE_URL", "file:reflection.db?cache=shared&mode=rwc"),
		GenAIURL:          getEnv("GENAI_URL", "https://generativelanguage.googleapis.com"),
		GenAIAPIKey:       getEnv("GENAI_API_KEY", ""),
		GenAIModel:        getEnv("GENAI_MODEL", "gemini-2.5-flash"),
		GenAITimeout:      time.Duration(getEnvInt("GENAI_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxTurns:          getEnvInt("REFLECTION_MAX_TURNS", 16),
		TeamSessionSecret: getEnv("TEAM_SESSION_SECRET", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
