package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("WS_KITCHEN_POLL_INTERVAL", "")

	cfg := Load()
	if cfg.Env != "development" {
		t.Fatalf("expected development env, got %q", cfg.Env)
	}
	if cfg.HTTPAddr != ":8087" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.JWTExpirySeconds != 43200 {
		t.Fatalf("expected default jwt expiry, got %d", cfg.JWTExpirySeconds)
	}
	if cfg.WSKitchenPollInterval != 2*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.WSKitchenPollInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("JWT_EXPIRY", "3600")
	t.Setenv("WS_KITCHEN_POLL_INTERVAL", "500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()
	if cfg.Env != "production" || cfg.HTTPAddr != ":9000" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.JWTExpirySeconds != 3600 {
		t.Fatalf("expected jwt expiry 3600, got %d", cfg.JWTExpirySeconds)
	}
	if cfg.WSKitchenPollInterval != 500*time.Millisecond {
		t.Fatalf("expected 500ms poll interval, got %s", cfg.WSKitchenPollInterval)
	}
	if len(cfg.CorsAllowedOrigins) != 2 || cfg.CorsAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CorsAllowedOrigins)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-number")
	t.Setenv("WS_HEARTBEAT_INTERVAL", "soon")

	cfg := Load()
	if cfg.JWTExpirySeconds != 43200 {
		t.Fatalf("expected fallback jwt expiry, got %d", cfg.JWTExpirySeconds)
	}
	if cfg.WSHeartbeatInterval != 30*time.Second {
		t.Fatalf("expected fallback heartbeat, got %s", cfg.WSHeartbeatInterval)
	}
}
