// Package providers sirve el catálogo público de providers.
package providers

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/authhub/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/providers"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

type ProvidersController struct {
	service svc.Service
}

func NewProvidersController(service svc.Service) *ProvidersController {
	return &ProvidersController{service: service}
}

// List maneja GET /api/providers
func (c *ProvidersController) List(w http.ResponseWriter, r *http.Request) {
	ps, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	resp := dto.ProvidersResponse{Providers: make([]dto.Provider, 0, len(ps))}
	for _, p := range ps {
		resp.Providers = append(resp.Providers, dto.ProviderFromCore(p))
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Get maneja GET /api/providers/{id}
func (c *ProvidersController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(r, "id")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return
	}
	p, err := c.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("provider not found"))
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ProviderResponse{Provider: dto.ProviderFromCore(*p)})
}
