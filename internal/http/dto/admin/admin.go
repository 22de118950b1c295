// Package admin contiene los DTOs de /api/admin y /api/mapping.
package admin

import (
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

type VerifyRequest struct {
	Password string `json:"password"`
}

type VerifyResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// AppRequest es el body de POST /api/admin/apps.
type AppRequest struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url"`
	APIEndpoints string `json:"api_endpoints"`
	ManifestData string `json:"manifest_data"`
}

func (r AppRequest) ToCore() core.InternalApp {
	return core.InternalApp{
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Description:  r.Description,
		LogoURL:      r.LogoURL,
		APIEndpoints: r.APIEndpoints,
		ManifestData: r.ManifestData,
	}
}

// AppPatchRequest es el body de PUT /api/admin/apps/{id}; campos ausentes no se tocan.
type AppPatchRequest struct {
	DisplayName  *string `json:"display_name"`
	Description  *string `json:"description"`
	LogoURL      *string `json:"logo_url"`
	APIEndpoints *string `json:"api_endpoints"`
	ManifestData *string `json:"manifest_data"`
}

func (r AppPatchRequest) ToCore() core.InternalAppPatch {
	return core.InternalAppPatch{
		DisplayName:  r.DisplayName,
		Description:  r.Description,
		LogoURL:      r.LogoURL,
		APIEndpoints: r.APIEndpoints,
		ManifestData: r.ManifestData,
	}
}

type AppsResponse struct {
	Apps []core.InternalApp `json:"apps"`
}

type AppResponse struct {
	App core.InternalApp `json:"app"`
}

type MappingRequest struct {
	ExternalProviderID int64 `json:"external_provider_id"`
	InternalAppID      int64 `json:"internal_app_id"`
	ConnectionID       int64 `json:"connection_id"`
}

type MappingsResponse struct {
	Mappings []core.AppMapping `json:"mappings"`
}

type MappingResponse struct {
	Mapping core.AppMapping `json:"mapping"`
}

type LogsResponse struct {
	Logs   []core.AuthEvent `json:"logs"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type PurgeResponse struct {
	Message       string `json:"message"`
	Deleted       int64  `json:"deleted"`
	OlderThanDays int    `json:"older_than_days"`
}
