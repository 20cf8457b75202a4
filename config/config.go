package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port string

	Store      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string
	JWTExpiry time.Duration

	CORSOrigins []string
	MeetBaseURL string

	LogLevel  string
	LogFormat string

	RedisAddr      string
	RedisPassword  string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		Store:      strings.ToLower(getEnv("STORE", StorePostgres)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASS", "postgres"),
		DBName:     getEnv("DB_NAME", "studymatch"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		MeetBaseURL: getEnv("MEET_BASE_URL", "https://meet.jit.si/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: time.Duration(getEnvAsInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
