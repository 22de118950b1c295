package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return p
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := Load(writeYAML(t, "app:\n  env: dev\n"))
	if !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("want ErrSecretRequired, got %v", err)
	}
}

func TestLoad_ShortSecretFails(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")
	_, err := Load("")
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("want ErrSecretTooShort, got %v", err)
	}
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AUDIT_RETENTION_DAYS", "7")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if len(c.Server.CORSAllowedOrigins) != 2 || c.Server.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("cors = %v", c.Server.CORSAllowedOrigins)
	}
	if c.Storage.Driver != "sqlite" || c.Cache.Kind != "memory" {
		t.Fatalf("defaults not applied: %s/%s", c.Storage.Driver, c.Cache.Kind)
	}
	if !c.Auth.RequireState {
		t.Fatal("require_state should default to true")
	}
	if got := Dur(c.Session.TTL, 0); got != 24*time.Hour {
		t.Fatalf("session ttl = %v", got)
	}
	if c.Audit.RetentionDays != 7 {
		t.Fatalf("retention = %d", c.Audit.RetentionDays)
	}
	if len(c.Providers.Google.Scopes) != 4 {
		t.Fatalf("google scopes = %v", c.Providers.Google.Scopes)
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	p := writeYAML(t, `
session:
  secret: "`+testSecret+`"
  ttl: 2h
auth:
  require_state: false
cache:
  kind: redis
  redis:
    addr: "redis:6379"
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Auth.RequireState {
		t.Fatal("require_state should be false from yaml")
	}
	if c.Cache.Kind != "redis" || c.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("cache = %+v", c.Cache)
	}
	if Dur(c.Session.TTL, 0) != 2*time.Hour {
		t.Fatalf("ttl = %s", c.Session.TTL)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.Session.Secret = testSecret
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, false},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres"; c.Storage.DSN = "" }, false},
		{"unknown cache", func(c *Config) { c.Cache.Kind = "memcached" }, false},
		{"bad duration", func(c *Config) { c.Session.TTL = "forever" }, false},
		{"zero ttl", func(c *Config) { c.Auth.StateTTL = "0s" }, false},
		{"google incomplete", func(c *Config) { c.Providers.Google.Enabled = true; c.Providers.Google.ClientID = "id" }, false},
		{"google complete", func(c *Config) {
			g := &c.Providers.Google
			g.Enabled, g.ClientID, g.ClientSecret, g.RedirectURL = true, "id", "secret", "http://localhost/cb"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
