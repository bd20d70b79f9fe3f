package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded once at startup.
// Every field is explicit and typed so a missing or malformed setting
// fails at boot instead of surfacing as a nil-map bug mid-request.
type Config struct {
	// HTTP
	Port string

	// Database
	DatabaseURL string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// OMDb API
	OMDbAPIKey     string
	OMDbAPIBaseURL string

	// Model artifacts
	ModelsDir string

	// Optional S3 source for model artifacts. When Bucket is empty the
	// artifacts are read from ModelsDir only.
	ModelS3Bucket string
	ModelS3Prefix string
	AWSRegion     string

	// Logging
	LogLevel string
	LogFile  string

	// Popular fallback
	PopularMinRatings int
	PopularTopN       int
}

// Load reads configuration from environment variables and validates it.
// Call godotenv.Load() before this if a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisHost:         getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:         getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		OMDbAPIKey:        os.Getenv("OMDB_API_KEY"),
		OMDbAPIBaseURL:    getEnvOrDefault("OMDB_API_BASE_URL", "http://www.omdbapi.com/"),
		ModelsDir:         getEnvOrDefault("MODELS_DIR", "models"),
		ModelS3Bucket:     os.Getenv("MODEL_S3_BUCKET"),
		ModelS3Prefix:     getEnvOrDefault("MODEL_S3_PREFIX", "models/"),
		AWSRegion:         getEnvOrDefault("AWS_REGION", "us-east-1"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:           getEnvOrDefault("LOG_FILE", "server.log"),
		PopularMinRatings: getEnvIntOrDefault("POPULAR_MIN_RATINGS", 50),
		PopularTopN:       getEnvIntOrDefault("POPULAR_TOP_N", 20),
	}

	if cfg.OMDbAPIKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY must be set and non-empty")
	}

	return cfg, nil
}

// RedisAddr returns the host:port address for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns an integer environment variable or default value
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
