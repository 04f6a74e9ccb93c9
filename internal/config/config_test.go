package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("Env = %q, want dev", cfg.Env)
	}
	if cfg.Port != 5000 {
		t.Fatalf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.AdminEmail != "admin@example.com" {
		t.Fatalf("AdminEmail = %q", cfg.AdminEmail)
	}
	if cfg.JWTTTL() != 30*24*time.Hour {
		t.Fatalf("JWTTTL = %v, want 720h", cfg.JWTTTL())
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.DBURL != "postgres://u:p@db:5432/shop" {
		t.Fatalf("DBURL = %q", cfg.DBURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want fallback 10", cfg.BcryptCost)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	if got := Load().ShutdownTimeout; got != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 10s", got)
	}
}

func TestTracingAndPoolSettings(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	t.Setenv("DB_MAX_CONNS", "")

	cfg := Load()
	if cfg.TraceSampleRatio != 0.25 {
		t.Fatalf("TraceSampleRatio = %v, want 0.25", cfg.TraceSampleRatio)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns = %d, want 10", cfg.DBMaxConns)
	}

	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "most")
	if got := Load().TraceSampleRatio; got != 1 {
		t.Fatalf("TraceSampleRatio = %v, want fallback 1", got)
	}
}
