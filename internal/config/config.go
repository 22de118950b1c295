package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinSecretLen es el largo mínimo aceptado para session.secret (HS256).
const MinSecretLen = 32

var (
	ErrSecretRequired = errors.New("config: session.secret is required")
	ErrSecretTooShort = fmt.Errorf("config: session.secret must be at least %d bytes", MinSecretLen)
)

type Config struct {
	App struct {
		Env         string `yaml:"env"` // dev | prod
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"app"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // sqlite | postgres
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MinConns     int `yaml:"min_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind   string `yaml:"kind"` // memory | redis
		Prefix string `yaml:"prefix"`
		Memory struct {
			DefaultTTL      string `yaml:"default_ttl"`
			CleanupInterval string `yaml:"cleanup_interval"`
			MaxEntries      int    `yaml:"max_entries"`
		} `yaml:"memory"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		Secret   string `yaml:"secret"`
		Issuer   string `yaml:"issuer"`
		TTL      string `yaml:"ttl"`
		AdminTTL string `yaml:"admin_ttl"`
	} `yaml:"session"`

	Auth struct {
		RequireState bool   `yaml:"require_state"`
		StateTTL     string `yaml:"state_ttl"`
	} `yaml:"auth"`

	Admin struct {
		InitialPassword string `yaml:"initial_password"`
	} `yaml:"admin"`

	Audit struct {
		RetentionDays int    `yaml:"retention_days"`
		PurgeInterval string `yaml:"purge_interval"` // "0" deshabilita el loop
	} `yaml:"audit"`

	Providers struct {
		Google GoogleProvider `yaml:"google"`
	} `yaml:"providers"`
}

type GoogleProvider struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"userinfo_url"`
	RevokeURL    string   `yaml:"revoke_url"`
	HTTPTimeout  string   `yaml:"http_timeout"`
}

// Load lee el YAML (si path existe), aplica defaults, overrides de entorno y valida.
// path vacío o inexistente no es error: la config puede venir solo del entorno.
func Load(path string) (*Config, error) {
	var c Config
	// require_state es opt-out
	c.Auth.RequireState = true

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.FrontendURL == "" {
		c.App.FrontendURL = "http://localhost:3000"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = "authhub.db"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "authhub:"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "10m"
	}
	if c.Cache.Memory.CleanupInterval == "" {
		c.Cache.Memory.CleanupInterval = "1m"
	}
	if c.Cache.Memory.MaxEntries == 0 {
		c.Cache.Memory.MaxEntries = 10000
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "authhub"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Session.AdminTTL == "" {
		c.Session.AdminTTL = "1h"
	}
	if c.Auth.StateTTL == "" {
		c.Auth.StateTTL = "10m"
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 30
	}
	if c.Audit.PurgeInterval == "" {
		c.Audit.PurgeInterval = "24h"
	}

	g := &c.Providers.Google
	if len(g.Scopes) == 0 {
		g.Scopes = []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/gmail.readonly",
			"https://www.googleapis.com/auth/calendar",
		}
	}
	if g.HTTPTimeout == "" {
		g.HTTPTimeout = "10s"
	}
}

func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.App.FrontendURL = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Session.TTL = v.String()
	}
	if v, ok := getEnvBool("AUTH_REQUIRE_STATE"); ok {
		c.Auth.RequireState = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_INITIAL_PASSWORD"); ok {
		c.Admin.InitialPassword = v
	}

	// AUDIT
	if v, ok := getEnvInt("AUDIT_RETENTION_DAYS"); ok {
		c.Audit.RetentionDays = v
	}
	if v, ok := getEnvStr("AUDIT_PURGE_INTERVAL"); ok {
		c.Audit.PurgeInterval = v
	}

	// PROVIDERS
	g := &c.Providers.Google
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		g.ClientID = v
		g.Enabled = true
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		g.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_REDIRECT_URL"); ok {
		g.RedirectURL = v
	}
	if v, ok := getEnvBool("GOOGLE_ENABLED"); ok {
		g.Enabled = v
	}
}

// Validate falla en arranque ante config insegura o incompleta.
func (c *Config) Validate() error {
	switch {
	case c.Session.Secret == "":
		return ErrSecretRequired
	case len(c.Session.Secret) < MinSecretLen:
		return ErrSecretTooShort
	}

	switch c.Storage.Driver {
	case "sqlite":
	case "postgres", "pg":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind)
	}
	if c.Cache.Memory.MaxEntries < 0 {
		return errors.New("config: cache.memory.max_entries must be >= 0")
	}

	durations := map[string]string{
		"server.read_timeout":           c.Server.ReadTimeout,
		"server.write_timeout":          c.Server.WriteTimeout,
		"server.shutdown_timeout":       c.Server.ShutdownTimeout,
		"cache.memory.default_ttl":      c.Cache.Memory.DefaultTTL,
		"cache.memory.cleanup_interval": c.Cache.Memory.CleanupInterval,
		"session.ttl":                   c.Session.TTL,
		"session.admin_ttl":             c.Session.AdminTTL,
		"auth.state_ttl":                c.Auth.StateTTL,
		"providers.google.http_timeout": c.Providers.Google.HTTPTimeout,
	}
	for k, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid duration for %s: %w", k, err)
		}
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", k)
		}
	}
	if _, err := time.ParseDuration(c.Audit.PurgeInterval); err != nil {
		return fmt.Errorf("config: invalid duration for audit.purge_interval: %w", err)
	}
	if c.Audit.RetentionDays < 0 {
		return errors.New("config: audit.retention_days must be >= 0")
	}

	g := c.Providers.Google
	if g.Enabled && (g.ClientID == "" || g.ClientSecret == "" || g.RedirectURL == "") {
		return errors.New("config: providers.google requires client_id, client_secret and redirect_url")
	}
	return nil
}

// IsProd reporta si corre en modo producción.
func (c *Config) IsProd() bool { return c.App.Env == "prod" || c.App.Env == "production" }

// Dur parsea una duración ya validada; ante error retorna def.
func Dur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return d
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
