package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketplace")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetAIMaxAttempts() != 3 || cfg.GetAIRetryBaseDelay() != 2*time.Second {
		t.Fatalf("unexpected retry defaults: %d %v", cfg.GetAIMaxAttempts(), cfg.GetAIRetryBaseDelay())
	}
	if cfg.GetAIRetryBackoff() != "exponential" {
		t.Fatalf("unexpected backoff %q", cfg.GetAIRetryBackoff())
	}
	if cfg.GetAIImageInterval() != 1500*time.Millisecond {
		t.Fatalf("unexpected image interval %v", cfg.GetAIImageInterval())
	}
	if cfg.GetMinioBucketProductImages() != "product-images" {
		t.Fatalf("unexpected bucket %q", cfg.GetMinioBucketProductImages())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadRejectsUnknownBackoff(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketplace")
	t.Setenv("AI_RETRY_BACKOFF", "jittered")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backoff")
	}
}

func TestWildcardOriginEnablesAllowAll(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketplace")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatal("wildcard origin should allow all")
	}
}
