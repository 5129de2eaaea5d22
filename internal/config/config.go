package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// session tokens
	JWTSecret         string
	SessionTTLMinutes int

	// redis, used by the checker as the dedup digest store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// notification checker
	CheckInterval time.Duration
	AlertWindow   time.Duration

	// recipe collaborator
	GeminiBaseURL string
	GeminiModel   string

	// observability
	OTLPEndpoint string

	AllowedOrigins []string
}

func Load() Config {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:               getEnv("APP_ENV", "dev"),
		Port:              getEnvInt("PORT", 8080),
		DBURL:             buildDBURL(),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 12*60),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		CheckInterval:     getEnvDuration("CHECK_INTERVAL", 15*time.Minute),
		AlertWindow:       getEnvDuration("ALERT_WINDOW", 48*time.Hour),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OTLPEndpoint:      getEnv("OTLP_ENDPOINT", ""),
		AllowedOrigins:    splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func buildDBURL() string {
	// a fully formed DB_URL wins over the assembled parts
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "foodalert")
	pass := getEnv("DB_PASSWORD", "foodalert")
	name := getEnv("DB_NAME", "foodalert")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
