package admin

import (
	"net/http"

	dto "github.com/dropDatabas3/authhub/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/admin"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

// AppsController maneja /api/admin/apps
type AppsController struct {
	service svc.AppsService
}

func NewAppsController(service svc.AppsService) *AppsController {
	return &AppsController{service: service}
}

func (c *AppsController) List(w http.ResponseWriter, r *http.Request) {
	apps, err := c.service.ListApps(r.Context())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AppsResponse{Apps: apps})
}

func (c *AppsController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	app, err := c.service.GetApp(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AppResponse{App: *app})
}

func (c *AppsController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AppRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	app, err := c.service.CreateApp(r.Context(), req.ToCore())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	logger.From(r.Context()).Info("internal app created", logger.Layer("controller"), logger.ID(app.ID))
	helpers.WriteJSON(w, http.StatusCreated, dto.AppResponse{App: *app})
}

func (c *AppsController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	var req dto.AppPatchRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	app, err := c.service.UpdateApp(r.Context(), id, req.ToCore())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AppResponse{App: *app})
}

func (c *AppsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	if err := c.service.DeleteApp(r.Context(), id); err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "App deleted successfully"})
}
