package config

import (
	"strings"
	"testing"
	"time"

	"storefront/internal/cart"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_NAME", "ORDER_TIMEOUT_SECONDS", "CART_MERGE_POLICY", "SESSION_TTL_MINUTES", "COOKIE_SECURE", "ORDER_SERVICE_URL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.OrderTimeout != 10*time.Second {
		t.Fatalf("expected 10s order timeout, got %v", cfg.OrderTimeout)
	}
	if cfg.SessionTTL != 120*time.Minute {
		t.Fatalf("expected 120m session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.MergePolicy() != cart.MergeReplace {
		t.Fatalf("expected replace policy, got %v", cfg.MergePolicy())
	}
	if cfg.UsesRemoteOrders() {
		t.Fatal("expected in-process orders without ORDER_SERVICE_URL")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CART_MERGE_POLICY", "accumulate")
	t.Setenv("ORDER_TIMEOUT_SECONDS", "3")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ORDER_SERVICE_URL", "http://orders:8081")

	cfg := FromEnv()
	if cfg.MergePolicy() != cart.MergeAccumulate {
		t.Fatalf("expected accumulate policy, got %v", cfg.MergePolicy())
	}
	if cfg.OrderTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.OrderTimeout)
	}
	if !cfg.CookieSecure || !cfg.UsesRemoteOrders() {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidateReportsMissingValues(t *testing.T) {
	cfg := Config{DBName: "storefront", CartMergePolicy: "sum", AdminEmail: "a@b.c"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"MONGO_URI", "JWT_SECRET", "sum", "ADMIN_PASSWORD"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := Config{MongoURI: "mongodb://localhost", DBName: "storefront", JWTSecret: "x", CartMergePolicy: "replace"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
