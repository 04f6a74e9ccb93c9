package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL      string
	DBMaxConns int
	// Store selects the account/product backend: "postgres" or "memory".
	Store string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	JWTTTLHours int
	BcryptCost  int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	ShutdownTimeout time.Duration

	CORSOrigins          []string
	MaxBodyBytes         int64
	ProductsCacheTTLSecs int
	OTLPEndpoint         string
	TraceSampleRatio     float64
}

func Load() Config {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 5000),
		DBURL:      buildDBURL(),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),
		Store:      getEnv("STORE", "postgres"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24*30),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		AdminName:     getEnv("ADMIN_NAME", "Admin User"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		ProductsCacheTTLSecs: getEnvInt("PRODUCTS_CACHE_TTL_SECONDS", 30),
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio:     getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) ProductsCacheTTL() time.Duration {
	return time.Duration(c.ProductsCacheTTLSecs) * time.Second
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "storefront")
	pass := getEnv("DB_PASSWORD", "storefront")
	name := getEnv("DB_NAME", "storefront")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
