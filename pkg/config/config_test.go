package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.MongoDatabaseName != DefaultMongoDatabaseName {
		t.Errorf("MongoDatabaseName = %q, want %q", cfg.MongoDatabaseName, DefaultMongoDatabaseName)
	}
	if cfg.SlotLockTTL != DefaultSlotLockTTL {
		t.Errorf("SlotLockTTL = %v, want %v", cfg.SlotLockTTL, DefaultSlotLockTTL)
	}
	if cfg.RedisEnabled() {
		t.Errorf("RedisEnabled() = true without REDIS_ADDR")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvRedisAddr, "localhost:6379")
	t.Setenv(EnvSlotLockTTL, "3s")
	t.Setenv(EnvRateLimitBurst, "4")
	t.Setenv(EnvDefaultTimeZone, "Europe/Berlin")
	t.Setenv(EnvRateLimitRequests, "not-a-number")

	cfg := FromEnv()

	if !cfg.RedisEnabled() {
		t.Errorf("RedisEnabled() = false with REDIS_ADDR set")
	}
	if cfg.SlotLockTTL != 3*time.Second {
		t.Errorf("SlotLockTTL = %v, want 3s", cfg.SlotLockTTL)
	}
	if cfg.RateLimitBurst != 4 {
		t.Errorf("RateLimitBurst = %d, want 4", cfg.RateLimitBurst)
	}
	if cfg.DefaultTimeZone != "Europe/Berlin" {
		t.Errorf("DefaultTimeZone = %q", cfg.DefaultTimeZone)
	}
	if cfg.RateLimitRequests != DefaultRateLimitRequests {
		t.Errorf("unparseable value should fall back to default, got %d", cfg.RateLimitRequests)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "99999" }, "Port must be between"},
		{"bad mongo uri", func(c *Config) { c.MongoURI = "postgres://localhost" }, "MongoURI must start with"},
		{"empty database", func(c *Config) { c.MongoDatabaseName = "" }, "MongoDatabaseName cannot be empty"},
		{"zero lock ttl", func(c *Config) { c.SlotLockTTL = 0 }, "SlotLockTTL must be positive"},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, "RateLimitBurst must be positive"},
		{"unknown zone", func(c *Config) { c.DefaultTimeZone = "Mars/Olympus" }, "DefaultTimeZone must be a valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SLOTBOOK_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SLOTBOOK_TEST_KEY") })

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile() error: %v", err)
	}
	if got := os.Getenv("SLOTBOOK_TEST_KEY"); got != "from-file" {
		t.Errorf("SLOTBOOK_TEST_KEY = %q, want from-file", got)
	}

	if err := loadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got: %v", err)
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinPaginationLimit},
		{-5, MinPaginationLimit},
		{25, 25},
		{DefaultPaginationLimit + 1, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://user:secret@db:27017")
	if strings.Contains(got, "secret") {
		t.Errorf("redactMongoURI() leaked password: %s", got)
	}
}
