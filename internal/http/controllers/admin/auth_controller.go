// Package admin contiene los controllers de /api/admin.
package admin

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/authhub/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
	svc "github.com/dropDatabas3/authhub/internal/http/services/admin"
)

// AuthController maneja la password de admin.
type AuthController struct {
	service svc.AuthService
}

func NewAuthController(service svc.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Verify maneja POST /api/admin/verify (público).
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("password"))
		return
	}

	tok, err := c.service.Verify(r.Context(), req.Password, helpers.ClientIP(r), r.UserAgent())
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.VerifyResponse{
		Success:   true,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	})
}

// ChangePassword maneja PUT /api/admin/password
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("currentPassword, newPassword"))
		return
	}
	if err := c.service.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}
