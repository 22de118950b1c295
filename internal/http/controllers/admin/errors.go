package admin

import (
	"errors"

	"github.com/dropDatabas3/authhub/internal/audit"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	svc "github.com/dropDatabas3/authhub/internal/http/services/admin"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

// MapError traduce errores de los services admin a AppError. Lo usa también el paquete mapping.
func MapError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrInvalidPassword):
		return httperrors.ErrInvalidCredentials
	case errors.Is(err, svc.ErrWeakPassword):
		return httperrors.ErrPasswordTooWeak.WithDetail(err.Error())
	case errors.Is(err, svc.ErrAdminNotConfigured):
		return httperrors.ErrServiceUnavailable.WithDetail("admin password not configured")
	case errors.Is(err, svc.ErrInvalidInput):
		return httperrors.ErrBadRequest.WithDetail(err.Error())
	case errors.Is(err, audit.ErrInvalidRetention):
		return httperrors.ErrInvalidParameter.WithDetail("older_than_days")
	case errors.Is(err, core.ErrNotFound):
		return httperrors.ErrNotFound
	case errors.Is(err, core.ErrConflict):
		return httperrors.ErrAlreadyExists
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
