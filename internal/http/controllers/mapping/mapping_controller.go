// Package mapping contiene los controllers de /api/mapping.
package mapping

import (
	"net/http"

	adminctrl "github.com/dropDatabas3/authhub/internal/http/controllers/admin"
	dto "github.com/dropDatabas3/authhub/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/admin"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

type MappingController struct {
	apps     svc.AppsService
	mappings svc.MappingsService
}

func NewMappingController(apps svc.AppsService, mappings svc.MappingsService) *MappingController {
	return &MappingController{apps: apps, mappings: mappings}
}

// InternalApps maneja GET /api/mapping/internal-apps (catálogo público de apps activas).
func (c *MappingController) InternalApps(w http.ResponseWriter, r *http.Request) {
	apps, err := c.apps.ListApps(r.Context())
	if err != nil {
		httperrors.WriteError(w, adminctrl.MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AppsResponse{Apps: apps})
}

// List maneja GET /api/mapping/mappings
func (c *MappingController) List(w http.ResponseWriter, r *http.Request) {
	ms, err := c.mappings.ListMappings(r.Context())
	if err != nil {
		httperrors.WriteError(w, adminctrl.MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MappingsResponse{Mappings: ms})
}

// Create maneja POST /api/mapping/mappings
func (c *MappingController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.MappingRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	m, err := c.mappings.CreateMapping(r.Context(), req.ExternalProviderID, req.InternalAppID, req.ConnectionID)
	if err != nil {
		httperrors.WriteError(w, adminctrl.MapError(err))
		return
	}
	logger.From(r.Context()).Info("mapping created", logger.Layer("controller"), logger.ID(m.ID))
	helpers.WriteJSON(w, http.StatusCreated, dto.MappingResponse{Mapping: *m})
}

// Delete maneja DELETE /api/mapping/mappings/{id}
func (c *MappingController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	if err := c.mappings.DeleteMapping(r.Context(), id); err != nil {
		httperrors.WriteError(w, adminctrl.MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Mapping deleted successfully"})
}
