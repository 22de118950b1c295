package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authhub/internal/app"
	"github.com/dropDatabas3/authhub/internal/config"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/store"
)

func main() {
	// .env es opcional
	_ = godotenv.Load()

	configPath := envOr("AUTHHUB_CONFIG", "configs/config.yaml")

	root := &cobra.Command{
		Use:           "authhub",
		Short:         "AuthHub: hub de conexiones OAuth",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Ruta al YAML de config (env AUTHHUB_CONFIG)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas y sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), configPath)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Logging.Level, ServiceName: "authhub"})
	httperrors.SetDebug(!cfg.IsProd())
	return cfg, nil
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.L().With(logger.Component("main"))

	c, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("close failed", logger.Err(err))
		}
	}()

	if err := c.Admin.Auth.SeedPassword(ctx, cfg.Admin.InitialPassword); err != nil {
		return fmt.Errorf("admin seed: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.Dur(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Dur(cfg.Server.WriteTimeout, 30*time.Second),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if interval := config.Dur(cfg.Audit.PurgeInterval, 0); interval > 0 {
		g.Go(func() error {
			return c.Audit.RunRetention(gctx, interval, cfg.Audit.RetentionDays)
		})
	} else {
		log.Info("audit retention loop disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), config.Dur(cfg.Server.ShutdownTimeout, 10*time.Second))
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func migrate(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	sc := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN}
	st, err := store.Open(ctx, sc)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.L().Info("migrations applied", logger.String("driver", cfg.Storage.Driver))
	return st.Close()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
