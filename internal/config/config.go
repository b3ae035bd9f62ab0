package config

import (
	"os"
	"time"
)

// Config is loaded from environment variables with defaults suitable for
// local development.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	PostgresDSN string
	RedisAddr   string // empty disables the cross-instance event fabric
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigin  string
	ExecutorURL string
}

func Load() *Config {
	return &Config{
		Port:        getEnvOrDefault("PORT", "5000"),
		MongoURI:    getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnvOrDefault("MONGO_DB", "collabedit"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", "dev-secret-change-in-production"),
		JWTTTL:      getDurationOrDefault("JWT_TTL", 7*24*time.Hour),
		CORSOrigin:  getEnvOrDefault("CORS_ORIGIN", "http://localhost:5173"),
		ExecutorURL: getEnvOrDefault("EXECUTOR_URL", "https://emkc.org/api/v2/piston"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
