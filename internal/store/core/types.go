package core

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OAuthConfig se persiste como JSON en providers.oauth_config.
type OAuthConfig struct {
	AuthURL  string `json:"authUrl"`
	TokenURL string `json:"tokenUrl"`
}

type Provider struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	OAuthConfig OAuthConfig `json:"oauthConfig"`
	Scopes      []string    `json:"scopes"`
	Enabled     bool        `json:"enabled"`
	CreatedAt   time.Time   `json:"createdAt"`
}

const (
	ConnectionActive  = "active"
	ConnectionRevoked = "revoked"
)

// Connection vincula un User local con una identidad externa en un Provider.
// Única por (UserID, ProviderID, ExternalID).
type Connection struct {
	ID           int64
	UserID       int64
	ProviderID   int64
	ProviderName string // join, solo lectura
	ExternalID   string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       []string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ConnectionUpsert es la entrada del upsert idempotente.
// RefreshToken vacío conserva el almacenado.
type ConnectionUpsert struct {
	UserID       int64
	ProviderID   int64
	ExternalID   string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       []string
}

// TokenUpdate reemplaza tokens tras un refresh. RefreshToken vacío conserva el actual.
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       []string
}

const (
	AppActive  = "active"
	AppDeleted = "deleted"
)

type InternalApp struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Description  string    `json:"description,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	APIEndpoints string    `json:"api_endpoints,omitempty"`
	ManifestData string    `json:"manifest_data,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InternalAppPatch: nil = no tocar.
type InternalAppPatch struct {
	DisplayName  *string
	Description  *string
	LogoURL      *string
	APIEndpoints *string
	ManifestData *string
}

func (p InternalAppPatch) Empty() bool {
	return p.DisplayName == nil && p.Description == nil && p.LogoURL == nil &&
		p.APIEndpoints == nil && p.ManifestData == nil
}

type AppMapping struct {
	ID                   int64     `json:"id"`
	ExternalProviderID   int64     `json:"external_provider_id"`
	InternalAppID        int64     `json:"internal_app_id"`
	ConnectionID         int64     `json:"connection_id"`
	CreatedAt            time.Time `json:"created_at"`
	ExternalProviderName string    `json:"external_provider_name,omitempty"`
	InternalAppName      string    `json:"internal_app_name,omitempty"`
}

// AuthEvent es append-only.
type AuthEvent struct {
	ID             int64     `json:"id"`
	EventType      string    `json:"event_type"`
	ExternalApp    string    `json:"external_app,omitempty"`
	InternalApp    string    `json:"internal_app,omitempty"`
	UserIdentifier string    `json:"user_identifier,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Details        string    `json:"details,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AuditFilter struct {
	EventType string
	Success   *bool
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// AuditCount es una fila del GROUP BY (event_type, success).
// Recent cuenta las filas del grupo con created_at >= el corte pedido.
type AuditCount struct {
	EventType string
	Success   bool
	Count     int64
	Recent    int64
}
