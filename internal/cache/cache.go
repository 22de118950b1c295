// Package cache es el token store del hub: key/value con TTL.
//
// Backends:
//   - memory: go-cache acotado (max entries + janitor). No durable ni compartido entre procesos.
//   - redis: compartido entre réplicas.
//
// Se usa para el "state" anti-CSRF del flujo OAuth; es best-effort, nunca fuente de verdad.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client define las operaciones del token store.
type Client interface {
	// Get retorna ErrNotFound si la key no existe o expiró.
	Get(ctx context.Context, key string) (string, error)
	// Set guarda con TTL; ttl <= 0 usa el TTL por defecto del backend.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Take lee y borra atómicamente (consumo de un solo uso).
	Take(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
	Stats(ctx context.Context) (Stats, error)
}

type Stats struct {
	Driver     string `json:"driver"`
	Keys       int64  `json:"keys"`
	UsedMemory string `json:"used_memory,omitempty"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	Evictions  int64  `json:"evictions"`
}

type Config struct {
	Kind   string // memory | redis
	Prefix string

	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxEntries      int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

var ErrNotFound = errors.New("cache: key not found")

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// New crea el cliente según cfg.Kind.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Kind) {
	case "memory", "":
		return NewMemory(cfg), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("cache: unsupported kind %q", cfg.Kind)
	}
}
