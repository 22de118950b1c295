// Package connections contiene los controllers de /api/connections y /api/auth/me.
package connections

import (
	"errors"
	"net/http"

	dtoauth "github.com/dropDatabas3/authhub/internal/http/dto/auth"
	dto "github.com/dropDatabas3/authhub/internal/http/dto/connections"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	mw "github.com/dropDatabas3/authhub/internal/http/middlewares"
	svc "github.com/dropDatabas3/authhub/internal/http/services/connections"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

// ConnectionsController sirve las conexiones del usuario de la sesión.
type ConnectionsController struct {
	service svc.Service
}

func NewConnectionsController(service svc.Service) *ConnectionsController {
	return &ConnectionsController{service: service}
}

// Me maneja GET /api/auth/me
func (c *ConnectionsController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := c.service.Me(ctx, mw.GetUserID(ctx))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dtoauth.NewMeResponse(p.User, p.Connections))
}

// List maneja GET /api/connections
func (c *ConnectionsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conns, err := c.service.List(ctx, mw.GetUserID(ctx))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Connections: dto.FromCoreList(conns)})
}

// Get maneja GET /api/connections/{id}
func (c *ConnectionsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	conn, err := c.service.Get(ctx, mw.GetUserID(ctx), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ItemResponse{Connection: dto.FromCore(*conn)})
}

// Delete maneja DELETE /api/connections/{id}
func (c *ConnectionsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	if err := c.service.Delete(ctx, mw.GetUserID(ctx), id); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Connection deleted successfully"})
}

// Refresh maneja POST /api/connections/{id}/refresh
func (c *ConnectionsController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	conn, err := c.service.Refresh(ctx, mw.GetUserID(ctx), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ActionResponse{
		Connection: dto.FromCore(*conn),
		Message:    "Token refreshed successfully",
	})
}

// Revoke maneja POST /api/connections/{id}/revoke
func (c *ConnectionsController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	conn, err := c.service.Revoke(ctx, mw.GetUserID(ctx), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ActionResponse{
		Connection: dto.FromCore(*conn),
		Message:    "Connection revoked successfully",
	})
}

func mapError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return httperrors.ErrNotFound.WithDetail("connection not found")
	case errors.Is(err, svc.ErrNoRefreshToken):
		return httperrors.ErrNoRefreshToken
	case errors.Is(err, svc.ErrConnectionRevoked):
		return httperrors.ErrConnectionRevoked
	case errors.Is(err, svc.ErrRefreshRejected):
		return httperrors.ErrConnectionRevoked.WithDetail("refresh token rejected by provider")
	case errors.Is(err, svc.ErrProviderFailure):
		return httperrors.ErrBadGateway.WithCause(err)
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
