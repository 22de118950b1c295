// Package router arma el árbol de rutas chi de AuthHub.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/authhub/internal/http/controllers"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	mw "github.com/dropDatabas3/authhub/internal/http/middlewares"
	"github.com/dropDatabas3/authhub/internal/metrics"
)

type Deps struct {
	Controllers *controllers.Controllers
	Sessions    mw.SessionVerifier
	Admins      mw.AdminVerifier
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// New devuelve el handler raíz con el stack global de middlewares.
func New(d Deps) http.Handler {
	c := d.Controllers
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithCORS(d.CORSOrigins),
		mw.WithSecurityHeaders(),
		mw.WithClientInfo(),
		d.Metrics.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	session := mw.RequireSession(d.Sessions)
	admin := mw.RequireAdmin(d.Admins)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/logout", c.Auth.Login.Logout)
			r.With(session).Get("/me", c.Connections.Connections.Me)
			r.Get("/{provider}", c.Auth.Login.Consent)
			r.Get("/{provider}/callback", c.Auth.Login.Callback)
		})

		r.Get("/providers", c.Providers.List)
		r.Get("/providers/{id}", c.Providers.Get)

		r.Route("/connections", func(r chi.Router) {
			r.Use(session)
			r.Get("/", c.Connections.Connections.List)
			r.Get("/{id}", c.Connections.Connections.Get)
			r.Delete("/{id}", c.Connections.Connections.Delete)
			r.Post("/{id}/refresh", c.Connections.Connections.Refresh)
			r.Post("/{id}/revoke", c.Connections.Connections.Revoke)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/verify", c.Admin.Auth.Verify)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/password", c.Admin.Auth.ChangePassword)
				r.Get("/stats", c.Admin.Logs.Dashboard)
				r.Get("/connections", c.Admin.Logs.Connections)

				r.Get("/apps", c.Admin.Apps.List)
				r.Post("/apps", c.Admin.Apps.Create)
				r.Get("/apps/{id}", c.Admin.Apps.Get)
				r.Put("/apps/{id}", c.Admin.Apps.Update)
				r.Delete("/apps/{id}", c.Admin.Apps.Delete)

				r.Get("/logs", c.Admin.Logs.Logs)
				r.Delete("/logs", c.Admin.Logs.Purge)
				r.Get("/logs/stats", c.Admin.Logs.Stats)
			})
		})

		r.Route("/mapping", func(r chi.Router) {
			r.Get("/internal-apps", c.Mapping.InternalApps)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/mappings", c.Mapping.List)
				r.Post("/mappings", c.Mapping.Create)
				r.Delete("/mappings/{id}", c.Mapping.Delete)
			})
		})
	})

	return r
}
