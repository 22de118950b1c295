// Package store abre el core.Repository según el driver configurado.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/store/pg"
	"github.com/dropDatabas3/authhub/internal/store/sqlite"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres struct {
		MaxOpenConns int
		MinConns     int
	}
}

// Open abre el driver y aplica migraciones.
func Open(ctx context.Context, cfg Config) (core.Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "":
		return sqlite.Open(ctx, cfg.DSN)
	case "postgres", "pg", "postgresql":
		return pg.New(ctx, cfg.DSN, pg.Options{
			MaxConns: cfg.Postgres.MaxOpenConns,
			MinConns: cfg.Postgres.MinConns,
		})
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
