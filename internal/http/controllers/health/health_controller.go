// Package health contiene los health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/authhub/internal/http/helpers"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

// Pinger es lo mínimo que necesita readyz de cada componente.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	components map[string]Pinger
	timeout    time.Duration
}

func NewHealthController(components map[string]Pinger) *HealthController {
	return &HealthController{components: components, timeout: 2 * time.Second}
}

// Healthz maneja GET /healthz (liveness, sin dependencias).
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Timestamp: time.Now().UTC(), Components: map[string]string{}}
	status := http.StatusOK
	for name, p := range c.components {
		if err := p.Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Components[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}
	helpers.WriteJSON(w, status, resp)
}
