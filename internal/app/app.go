// Package app es el composition root: arma store, cache, issuer, providers,
// auditoría y el handler HTTP a partir de la config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/cache"
	"github.com/dropDatabas3/authhub/internal/config"
	"github.com/dropDatabas3/authhub/internal/http/controllers"
	"github.com/dropDatabas3/authhub/internal/http/controllers/health"
	"github.com/dropDatabas3/authhub/internal/http/router"
	adminsvc "github.com/dropDatabas3/authhub/internal/http/services/admin"
	authsvc "github.com/dropDatabas3/authhub/internal/http/services/auth"
	connsvc "github.com/dropDatabas3/authhub/internal/http/services/connections"
	provsvc "github.com/dropDatabas3/authhub/internal/http/services/providers"
	"github.com/dropDatabas3/authhub/internal/jwt"
	"github.com/dropDatabas3/authhub/internal/metrics"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/providers"
	"github.com/dropDatabas3/authhub/internal/providers/google"
	"github.com/dropDatabas3/authhub/internal/store"
	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/store/pg"
	"github.com/dropDatabas3/authhub/internal/store/sqlite"
)

// Container guarda los handles de larga vida. Se construye una vez en cmd/*.
type Container struct {
	Config    *config.Config
	Store     core.Repository
	Cache     cache.Client
	Issuer    *jwt.Issuer
	Providers *providers.Registry
	Metrics   *metrics.Metrics
	Audit     *audit.Recorder
	Admin     adminsvc.Services
}

// OpenStore abre solo el store y la auditoría (lo que usa authhubctl).
func OpenStore(ctx context.Context, cfg *config.Config) (*Container, error) {
	st, err := store.Open(ctx, storeConfig(cfg))
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Store: st}
	if c.Issuer, err = newIssuer(cfg); err != nil {
		_ = st.Close()
		return nil, err
	}
	c.Audit = audit.NewRecorder(st)
	c.Admin = adminsvc.NewServices(adminsvc.Deps{Repo: st, Issuer: c.Issuer, Audit: c.Audit})
	return c, nil
}

func newIssuer(cfg *config.Config) (*jwt.Issuer, error) {
	return jwt.NewIssuer(cfg.Session.Secret,
		jwt.WithIssuer(cfg.Session.Issuer),
		jwt.WithTTL(config.Dur(cfg.Session.TTL, 24*time.Hour)),
		jwt.WithAdminTTL(config.Dur(cfg.Session.AdminTTL, time.Hour)),
	)
}

// New arma el contenedor completo del servicio HTTP.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.L().With(logger.Component("app"))

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	st, err := store.Open(ctx, storeConfig(cfg))
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Store: st, Metrics: m}

	switch s := st.(type) {
	case *pg.Store:
		_ = m.Register(metrics.NewPoolCollector(s.Pool))
	case *sqlite.Store:
		_ = m.Register(collectors.NewDBStatsCollector(s.DB(), "sqlite"))
	}

	c.Cache, err = cache.New(cache.Config{
		Kind:            cfg.Cache.Kind,
		Prefix:          cfg.Cache.Prefix,
		DefaultTTL:      config.Dur(cfg.Cache.Memory.DefaultTTL, 10*time.Minute),
		CleanupInterval: config.Dur(cfg.Cache.Memory.CleanupInterval, time.Minute),
		MaxEntries:      cfg.Cache.Memory.MaxEntries,
		RedisAddr:       cfg.Cache.Redis.Addr,
		RedisPassword:   cfg.Cache.Redis.Password,
		RedisDB:         cfg.Cache.Redis.DB,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	if c.Issuer, err = newIssuer(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Providers = providers.NewRegistry()
	if g := cfg.Providers.Google; g.Enabled {
		c.Providers.Register(google.ProviderName, google.Factory(google.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
			Scopes:       g.Scopes,
			AuthURL:      g.AuthURL,
			TokenURL:     g.TokenURL,
			UserInfoURL:  g.UserInfoURL,
			RevokeURL:    g.RevokeURL,
			HTTPTimeout:  config.Dur(g.HTTPTimeout, 10*time.Second),
		}))
	}
	log.Info("providers registered", logger.Any("providers", c.Providers.Names()))

	c.Audit = audit.NewRecorder(st, audit.WithMetrics(m))
	c.Admin = adminsvc.NewServices(adminsvc.Deps{Repo: st, Issuer: c.Issuer, Audit: c.Audit})
	return c, nil
}

// Handler arma controllers y router sobre el contenedor.
func (c *Container) Handler() http.Handler {
	cfg := c.Config
	ctrls := controllers.New(controllers.Deps{
		Auth: authsvc.NewServices(authsvc.Deps{
			Repo:         c.Store,
			Providers:    c.Providers,
			Cache:        c.Cache,
			Issuer:       c.Issuer,
			Audit:        c.Audit,
			Metrics:      c.Metrics,
			RequireState: cfg.Auth.RequireState,
			StateTTL:     config.Dur(cfg.Auth.StateTTL, authsvc.DefaultStateTTL),
		}),
		Connections: connsvc.NewService(connsvc.Deps{
			Repo:      c.Store,
			Providers: c.Providers,
			Audit:     c.Audit,
			Metrics:   c.Metrics,
		}),
		Providers:   provsvc.NewService(c.Store),
		Admin:       c.Admin,
		Readiness:   map[string]health.Pinger{"store": c.Store, "cache": c.Cache},
		FrontendURL: cfg.App.FrontendURL,
	})
	return router.New(router.Deps{
		Controllers: ctrls,
		Sessions:    c.Issuer,
		Admins:      c.Issuer,
		Metrics:     c.Metrics,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})
}

func (c *Container) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

func storeConfig(cfg *config.Config) store.Config {
	sc := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN}
	sc.Postgres.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
	sc.Postgres.MinConns = cfg.Storage.Postgres.MinConns
	return sc
}
