// Package controllers agrupa los controllers HTTP por dominio.
//
// Flujo de inicialización:
//
//	svcs  := services (auth, connections, providers, admin)
//	ctrls := controllers.New(deps)
//	h     := router.New(router.Deps{Controllers: ctrls, ...})
package controllers

import (
	"github.com/dropDatabas3/authhub/internal/http/controllers/admin"
	"github.com/dropDatabas3/authhub/internal/http/controllers/auth"
	"github.com/dropDatabas3/authhub/internal/http/controllers/connections"
	"github.com/dropDatabas3/authhub/internal/http/controllers/health"
	"github.com/dropDatabas3/authhub/internal/http/controllers/mapping"
	"github.com/dropDatabas3/authhub/internal/http/controllers/providers"
	adminsvc "github.com/dropDatabas3/authhub/internal/http/services/admin"
	authsvc "github.com/dropDatabas3/authhub/internal/http/services/auth"
	connsvc "github.com/dropDatabas3/authhub/internal/http/services/connections"
	provsvc "github.com/dropDatabas3/authhub/internal/http/services/providers"
)

// Controllers agrupa todos los sub-controllers.
type Controllers struct {
	Auth        *auth.Controllers
	Connections *connections.Controllers
	Providers   *providers.ProvidersController
	Admin       *admin.Controllers
	Mapping     *mapping.MappingController
	Health      *health.HealthController
}

type Deps struct {
	Auth        authsvc.Services
	Connections connsvc.Service
	Providers   provsvc.Service
	Admin       adminsvc.Services
	// Readiness son los componentes que chequea /readyz.
	Readiness   map[string]health.Pinger
	FrontendURL string
}

// New es el único lugar donde se instancian los controllers.
func New(d Deps) *Controllers {
	return &Controllers{
		Auth:        auth.NewControllers(d.Auth, d.FrontendURL),
		Connections: connections.NewControllers(d.Connections),
		Providers:   providers.NewProvidersController(d.Providers),
		Admin:       admin.NewControllers(d.Admin),
		Mapping:     mapping.NewMappingController(d.Admin.Apps, d.Admin.Mappings),
		Health:      health.NewHealthController(d.Readiness),
	}
}
