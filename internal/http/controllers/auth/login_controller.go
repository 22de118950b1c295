// Package auth contiene los controllers del login OAuth.
package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/authhub/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/auth"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

// genericFailure es el único mensaje que viaja en el redirect de error.
const genericFailure = "Authentication failed"

// LoginController maneja /api/auth/{provider}, el callback y el logout.
type LoginController struct {
	service     svc.LoginService
	frontendURL string
}

func NewLoginController(service svc.LoginService, frontendURL string) *LoginController {
	return &LoginController{service: service, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Consent maneja GET /api/auth/{provider}
func (c *LoginController) Consent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authURL, err := c.service.ConsentURL(ctx, chi.URLParam(r, "provider"))
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnknownProvider), errors.Is(err, svc.ErrProviderDisabled):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("provider not enabled"))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ConsentResponse{AuthURL: authURL})
}

// Callback maneja GET /api/auth/{provider}/callback. Siempre responde con un 302
// al frontend; el detalle del error queda en logs y auditoría.
func (c *LoginController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	res, err := c.service.CompleteLogin(ctx, svc.LoginRequest{
		Provider:      provider,
		Code:          strings.TrimSpace(q.Get("code")),
		State:         strings.TrimSpace(q.Get("state")),
		IP:            helpers.ClientIP(r),
		UserAgent:     r.UserAgent(),
		ProviderError: strings.TrimSpace(q.Get("error")),
	})

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	if err != nil {
		http.Redirect(w, r, c.frontendURL+"/auth/error?message="+url.PathEscape(genericFailure), http.StatusFound)
		return
	}

	logger.From(ctx).Debug("login completed",
		logger.Layer("controller"),
		logger.ProviderName(provider),
		logger.UserID(res.User.ID),
		logger.Bool("new_user", res.NewUser),
	)
	http.Redirect(w, r, c.frontendURL+"/auth/callback?token="+url.QueryEscape(res.Token), http.StatusFound)
}

// Logout maneja POST /api/auth/logout. No hay estado server-side que invalidar.
func (c *LoginController) Logout(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: c.service.Logout(r.Context())})
}
