// Package admin contiene los services de la superficie de administración.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

var (
	ErrInvalidPassword    = errors.New("invalid admin password")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrAdminNotConfigured = errors.New("admin password not configured")
	ErrInvalidInput       = errors.New("invalid input")
)

type AdminIssuer interface {
	IssueAdmin() (string, time.Time, error)
}

// AuditLog es lo que la superficie admin usa del Recorder.
type AuditLog interface {
	Record(ctx context.Context, ev audit.Event)
	Query(ctx context.Context, f audit.Filter) ([]core.AuthEvent, error)
	Stats(ctx context.Context, now time.Time) (*audit.Stats, error)
	Purge(ctx context.Context, days int) (int64, error)
}

type Repository interface {
	core.UserRepository
	core.ProviderRepository
	core.ConnectionRepository
	core.InternalAppRepository
	core.MappingRepository
	core.AdminRepository
}

type Deps struct {
	Repo   Repository
	Issuer AdminIssuer
	Audit  AuditLog
	Now    func() time.Time
}

type Services struct {
	Auth     AuthService
	Apps     AppsService
	Mappings MappingsService
	Logs     LogsService
}

func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	return Services{
		Auth:     NewAuthService(d),
		Apps:     NewAppsService(d),
		Mappings: NewMappingsService(d),
		Logs:     NewLogsService(d),
	}
}
