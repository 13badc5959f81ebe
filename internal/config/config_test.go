package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RateLimitMax != 10 {
		t.Fatalf("expected default rate limit max, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 10*time.Minute {
		t.Fatalf("expected default rate limit window, got %s", cfg.RateLimitWindow)
	}
	if cfg.MinFillTime != 900*time.Millisecond {
		t.Fatalf("expected default min fill time, got %s", cfg.MinFillTime)
	}
	if cfg.ThanksPath != "/thanks.html" {
		t.Fatalf("expected default thanks path, got %s", cfg.ThanksPath)
	}
	if cfg.RateLimitBackend != "file" {
		t.Fatalf("expected file rate limit backend, got %s", cfg.RateLimitBackend)
	}
	if cfg.SESEnabled {
		t.Fatal("expected SES disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "2m")
	t.Setenv("MIN_FILL_TIME", "500ms")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("THANKS_PATH", "/spasibo.html")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.RateLimitMax != 5 {
		t.Fatalf("expected rate limit override, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 2*time.Minute {
		t.Fatalf("expected window override, got %s", cfg.RateLimitWindow)
	}
	if cfg.MinFillTime != 500*time.Millisecond {
		t.Fatalf("expected fill time override, got %s", cfg.MinFillTime)
	}
	if cfg.RateLimitBackend != "redis" {
		t.Fatalf("expected redis backend, got %s", cfg.RateLimitBackend)
	}
	if cfg.ThanksPath != "/spasibo.html" {
		t.Fatalf("expected thanks path override, got %s", cfg.ThanksPath)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "many")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("SES_ENABLED", "yep")
	cfg := Load()
	if cfg.RateLimitMax != 10 {
		t.Fatalf("expected fallback rate limit max, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 10*time.Minute {
		t.Fatalf("expected fallback window, got %s", cfg.RateLimitWindow)
	}
	if cfg.SESEnabled {
		t.Fatal("expected SES fallback false")
	}
}
