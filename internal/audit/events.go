package audit

// Tipos de evento persistidos en auth_events.event_type.
const (
	OAuthLoginSuccess = "oauth_login_success"
	OAuthLoginFailed  = "oauth_login_failed"

	ConnectionDeleted       = "connection_deleted"
	ConnectionRefreshed     = "connection_refreshed"
	ConnectionRefreshFailed = "connection_refresh_failed"
	ConnectionRevoked       = "connection_revoked"

	AdminLoginSuccess    = "admin_login_success"
	AdminLoginFailed     = "admin_login_failed"
	AdminPasswordChanged = "admin_password_changed"

	InternalAppCreated = "internal_app_created"
	InternalAppUpdated = "internal_app_updated"
	InternalAppDeleted = "internal_app_deleted"

	MappingCreated = "mapping_created"
	MappingFailed  = "mapping_failed"
	MappingDeleted = "mapping_deleted"

	AuditPurged = "audit_purged"
)

// Event es la entrada de Record. Details se serializa a JSON.
type Event struct {
	Type           string
	ExternalApp    string
	InternalApp    string
	UserIdentifier string
	IP             string
	UserAgent      string
	Success        bool
	ErrorMessage   string
	Details        map[string]any
}
