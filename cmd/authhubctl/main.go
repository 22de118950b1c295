// authhubctl es la CLI de operadores: trabaja directo contra el store configurado.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authhub/internal/app"
	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/config"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

type cli struct {
	configPath string
	c          *app.Container
}

func (x *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(x.configPath)
	if err != nil {
		return err
	}
	// la CLI solo loguea warnings para no ensuciar la salida
	logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "authhubctl"})
	x.c, err = app.OpenStore(cmd.Context(), cfg)
	return err
}

func (x *cli) close(*cobra.Command, []string) error {
	if x.c == nil {
		return nil
	}
	return x.c.Close()
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	_ = godotenv.Load()

	x := &cli{configPath: envOr("AUTHHUB_CONFIG", "configs/config.yaml")}
	root := &cobra.Command{
		Use:                "authhubctl",
		Short:              "CLI de administración de AuthHub",
		SilenceUsage:       true,
		PersistentPreRunE:  x.open,
		PersistentPostRunE: x.close,
	}
	root.PersistentFlags().StringVar(&x.configPath, "config", x.configPath, "Ruta al YAML de config (env AUTHHUB_CONFIG)")

	root.AddCommand(
		x.setPasswordCmd(),
		x.verifyCmd(),
		x.appsCmd(),
		x.mappingsCmd(),
		x.connectionsCmd(),
		x.logsCmd(),
		x.statsCmd(),
		x.purgeCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func (x *cli) setPasswordCmd() *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Setea la password de admin sin pedir la actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pw == "" {
				pw = os.Getenv("AUTHHUB_ADMIN_PASSWORD")
			}
			if pw == "" {
				return fmt.Errorf("--password es requerido (o env AUTHHUB_ADMIN_PASSWORD)")
			}
			if err := x.c.Admin.Auth.SetPassword(cmd.Context(), pw); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "Nueva password (min 8 caracteres)")
	return cmd
}

func (x *cli) verifyCmd() *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifica la password de admin e imprime un token admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := x.c.Admin.Auth.Verify(cmd.Context(), pw, "", "authhubctl")
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"token": tok.Token, "expiresAt": tok.ExpiresAt})
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "Password de admin")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (x *cli) appsCmd() *cobra.Command {
	apps := &cobra.Command{Use: "apps", Short: "Apps internas"}

	apps.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista las apps activas",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := x.c.Admin.Apps.ListApps(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	})

	var in core.InternalApp
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea una app interna",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := x.c.Admin.Apps.CreateApp(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(a)
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "Nombre único (slug)")
	create.Flags().StringVar(&in.DisplayName, "display-name", "", "Nombre visible")
	create.Flags().StringVar(&in.Description, "description", "", "Descripción")
	create.Flags().StringVar(&in.LogoURL, "logo-url", "", "URL del logo")
	apps.AddCommand(create)

	apps.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete de una app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := x.c.Admin.Apps.DeleteApp(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	})
	return apps
}

func (x *cli) mappingsCmd() *cobra.Command {
	m := &cobra.Command{Use: "mappings", Short: "Mappings provider/app/conexión"}

	m.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista los mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := x.c.Admin.Mappings.ListMappings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	})

	var providerID, appID, connID int64
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := x.c.Admin.Mappings.CreateMapping(cmd.Context(), providerID, appID, connID)
			if err != nil {
				return err
			}
			return printJSON(mp)
		},
	}
	create.Flags().Int64Var(&providerID, "provider-id", 0, "ID del provider externo")
	create.Flags().Int64Var(&appID, "app-id", 0, "ID de la app interna")
	create.Flags().Int64Var(&connID, "connection-id", 0, "ID de la conexión")
	m.AddCommand(create)

	m.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Borra un mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := x.c.Admin.Mappings.DeleteMapping(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	})
	return m
}

// connectionView omite los tokens.
type connectionView struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"userId"`
	Provider        string   `json:"provider"`
	ExternalID      string   `json:"externalId"`
	Status          string   `json:"status"`
	Scopes          []string `json:"scopes"`
	HasRefreshToken bool     `json:"hasRefreshToken"`
}

func (x *cli) connectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "Lista todas las conexiones (sin tokens)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conns, err := x.c.Admin.Mappings.ListConnections(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]connectionView, 0, len(conns))
			for _, c := range conns {
				out = append(out, connectionView{
					ID:              c.ID,
					UserID:          c.UserID,
					Provider:        c.ProviderName,
					ExternalID:      c.ExternalID,
					Status:          c.Status,
					Scopes:          c.Scopes,
					HasRefreshToken: c.RefreshToken != "",
				})
			}
			return printJSON(out)
		},
	}
}

func (x *cli) logsCmd() *cobra.Command {
	var (
		f       audit.Filter
		success string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Consulta el log de auditoría",
		RunE: func(cmd *cobra.Command, args []string) error {
			if success != "" {
				b, err := strconv.ParseBool(success)
				if err != nil {
					return fmt.Errorf("--success: %w", err)
				}
				f.Success = &b
			}
			events, err := x.c.Admin.Logs.Logs(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(events)
		},
	}
	cmd.Flags().IntVar(&f.Limit, "limit", audit.DefaultLimit, "Máximo de eventos")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "Offset")
	cmd.Flags().StringVar(&f.EventType, "event-type", "", "Filtrar por tipo de evento")
	cmd.Flags().StringVar(&success, "success", "", "Filtrar por resultado (true|false)")
	return cmd
}

func (x *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Contadores del dashboard y agregados de auditoría",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := x.c.Admin.Logs.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			st, err := x.c.Admin.Logs.LogStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"dashboard": d, "audit": st})
		},
	}
}

func (x *cli) purgeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Borra eventos de auditoría más viejos que N días",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := x.c.Admin.Logs.PurgeLogs(cmd.Context(), days)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"deleted": n})
		},
	}
	cmd.Flags().IntVar(&days, "older-than-days", audit.DefaultRetentionDays, "Antigüedad mínima en días")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido: %q", s)
	}
	return id, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
