package admin

import svc "github.com/dropDatabas3/authhub/internal/http/services/admin"

// Controllers agrupa los controllers del dominio admin.
type Controllers struct {
	Auth *AuthController
	Apps *AppsController
	Logs *LogsController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Auth: NewAuthController(s.Auth),
		Apps: NewAppsController(s.Apps),
		Logs: NewLogsController(s.Logs, s.Mappings),
	}
}
