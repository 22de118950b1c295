// Package auth contiene el flujo de login OAuth (consent, callback, logout).
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/cache"
	"github.com/dropDatabas3/authhub/internal/metrics"
	"github.com/dropDatabas3/authhub/internal/providers"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

// StateKeyPrefix prefija el state anti-CSRF en el token store.
const StateKeyPrefix = "oauth_state:"

const DefaultStateTTL = 10 * time.Minute

var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrProviderDisabled = errors.New("provider disabled")
	ErrInvalidState     = errors.New("invalid or expired state")
	ErrAuthFailed       = errors.New("authentication failed")
)

// Repository es el subconjunto del store que usa el login.
type Repository interface {
	core.UserRepository
	core.ProviderRepository
	core.ConnectionRepository
}

type ProviderResolver interface {
	Get(name string) (providers.Provider, error)
}

type SessionIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event)
}

// LoginRequest es la entrada del callback.
type LoginRequest struct {
	Provider  string
	Code      string
	State     string
	IP        string
	UserAgent string
	// ProviderError es el parámetro error que manda el IdP cuando el usuario cancela.
	ProviderError string
}

type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	User       *core.User
	Connection *core.Connection
	NewUser    bool
}

type LoginService interface {
	ConsentURL(ctx context.Context, provider string) (string, error)
	CompleteLogin(ctx context.Context, in LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context) string
}

type Deps struct {
	Repo      Repository
	Providers ProviderResolver
	Cache     cache.Client
	Issuer    SessionIssuer
	Audit     AuditRecorder
	Metrics   *metrics.Metrics

	RequireState bool
	StateTTL     time.Duration
	Now          func() time.Time
}

type Services struct {
	Login LoginService
}

func NewServices(d Deps) Services {
	return Services{Login: NewLoginService(d)}
}
