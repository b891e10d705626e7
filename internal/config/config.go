package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DBPath       string
	JWTSecret    string
	TokenTTL     time.Duration
	DemoSeed     bool
	DemoEmail    string
	DemoPassword string
	DemoUserID   int64
}

// Load reads configuration from the environment, with a best-effort .env
// file for local development. Missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "quiz.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-only-secret"),
		TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),
		DemoSeed:     getEnv("DEMO_SEED", "true") == "true",
		DemoEmail:    getEnv("DEMO_EMAIL", "demo@example.com"),
		DemoPassword: getEnv("DEMO_PASSWORD", "demo-password"),
		DemoUserID:   1,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
