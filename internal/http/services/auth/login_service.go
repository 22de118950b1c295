package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/cache"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/providers"
	tokens "github.com/dropDatabas3/authhub/internal/security/token"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

// Categorías fijas que van a auth_events.error_message. Nunca incluyen la causa.
const (
	failProviderError      = "provider_error"
	failInvalidState       = "invalid_state"
	failUnknownProvider    = "unknown_provider"
	failProviderDisabled   = "provider_disabled"
	failTokenExchange      = "token_exchange_failed"
	failIdentity           = "identity_fetch_failed"
	failIncompleteIdentity = "incomplete_identity"
	failUser               = "user_persistence_failed"
	failConnection         = "connection_persistence_failed"
	failSession            = "session_issue_failed"
)

type loginService struct {
	deps Deps
}

func NewLoginService(d Deps) LoginService {
	if d.StateTTL <= 0 {
		d.StateTTL = DefaultStateTTL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &loginService{deps: d}
}

func (s *loginService) ConsentURL(ctx context.Context, provider string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("ConsentURL"),
		logger.ProviderName(provider),
	)

	adapter, err := s.deps.Providers.Get(provider)
	if err != nil {
		log.Debug("provider not registered", logger.Err(err))
		return "", ErrUnknownProvider
	}

	row, err := s.deps.Repo.GetProviderByName(ctx, provider)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrUnknownProvider
		}
		return "", fmt.Errorf("load provider: %w", err)
	}
	if !row.Enabled {
		return "", ErrProviderDisabled
	}

	state, err := tokens.NewState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.deps.Cache.Set(ctx, StateKeyPrefix+state, provider, s.deps.StateTTL); err != nil {
		log.Error("state store failed", logger.Err(err))
		return "", fmt.Errorf("store state: %w", err)
	}
	return adapter.ConsentURL(state), nil
}

// CompleteLogin registra exactamente un evento de auditoría por intento. No reintenta nada.
func (s *loginService) CompleteLogin(ctx context.Context, in LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("CompleteLogin"),
		logger.ProviderName(in.Provider),
	)

	fail := func(sentinel error, category string, cause error) (*LoginResult, error) {
		if cause != nil {
			log.Warn("login failed", logger.String("reason", category), logger.Err(cause))
		} else {
			log.Warn("login failed", logger.String("reason", category))
		}
		s.deps.Metrics.LoginAttempt(in.Provider, false)
		s.deps.Audit.Record(ctx, audit.Event{
			Type:         audit.OAuthLoginFailed,
			ExternalApp:  in.Provider,
			IP:           in.IP,
			UserAgent:    in.UserAgent,
			ErrorMessage: category,
		})
		if cause != nil {
			return nil, fmt.Errorf("%w: %s: %w", sentinel, category, cause)
		}
		return nil, fmt.Errorf("%w: %s", sentinel, category)
	}

	if in.ProviderError != "" {
		return fail(ErrAuthFailed, failProviderError, nil)
	}

	// Paso 0: state de un solo uso
	if s.deps.RequireState {
		if err := s.consumeState(ctx, in.Provider, in.State); err != nil {
			return fail(ErrInvalidState, failInvalidState, err)
		}
	}

	adapter, err := s.deps.Providers.Get(in.Provider)
	if err != nil {
		return fail(ErrUnknownProvider, failUnknownProvider, err)
	}

	// Paso 1: canje del code
	if strings.TrimSpace(in.Code) == "" {
		return fail(ErrAuthFailed, failTokenExchange, errors.New("missing code"))
	}
	ts, err := adapter.Exchange(ctx, in.Code)
	s.deps.Metrics.ProviderCall(in.Provider, "exchange", err)
	if err != nil {
		return fail(ErrAuthFailed, failTokenExchange, err)
	}

	// Paso 2: identidad
	ident, err := adapter.FetchIdentity(ctx, ts.AccessToken)
	s.deps.Metrics.ProviderCall(in.Provider, "userinfo", err)
	if err != nil {
		if errors.Is(err, providers.ErrIncompleteIdentity) {
			return fail(ErrAuthFailed, failIncompleteIdentity, err)
		}
		return fail(ErrAuthFailed, failIdentity, err)
	}

	// Paso 3: usuario por email exacto
	now := s.deps.Now().UTC()
	user, created, err := s.findOrCreateUser(ctx, ident, now)
	if err != nil {
		return fail(ErrAuthFailed, failUser, err)
	}
	log = log.With(logger.UserID(user.ID))

	// Paso 4: fila del provider
	row, err := s.deps.Repo.GetProviderByName(ctx, in.Provider)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fail(ErrUnknownProvider, failUnknownProvider, err)
		}
		return fail(ErrAuthFailed, failConnection, err)
	}
	if !row.Enabled {
		return fail(ErrProviderDisabled, failProviderDisabled, nil)
	}

	// Paso 5: upsert atómico
	conn, err := s.deps.Repo.UpsertConnection(ctx, core.ConnectionUpsert{
		UserID:       user.ID,
		ProviderID:   row.ID,
		ExternalID:   ident.ExternalID,
		AccessToken:  ts.AccessToken,
		RefreshToken: ts.RefreshToken,
		ExpiresAt:    ts.ExpiresAtPtr(),
		Scopes:       ts.Scopes,
	}, now)
	if err != nil {
		return fail(ErrAuthFailed, failConnection, err)
	}

	// Paso 6: session token
	token, exp, err := s.deps.Issuer.Issue(user.ID, user.Email)
	if err != nil {
		return fail(ErrAuthFailed, failSession, err)
	}

	s.deps.Metrics.LoginAttempt(in.Provider, true)
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.OAuthLoginSuccess,
		ExternalApp:    in.Provider,
		UserIdentifier: user.Email,
		IP:             in.IP,
		UserAgent:      in.UserAgent,
		Success:        true,
		Details: map[string]any{
			"user_id":       user.ID,
			"connection_id": conn.ID,
			"provider":      in.Provider,
		},
	})
	log.Info("login completed",
		logger.Email(user.Email),
		logger.ConnectionID(conn.ID),
		logger.Bool("new_user", created),
	)

	return &LoginResult{
		Token:      token,
		ExpiresAt:  exp,
		User:       user,
		Connection: conn,
		NewUser:    created,
	}, nil
}

func (s *loginService) consumeState(ctx context.Context, provider, state string) error {
	state = strings.TrimSpace(state)
	if state == "" {
		return errors.New("missing state")
	}
	owner, err := s.deps.Cache.Take(ctx, StateKeyPrefix+state)
	if err != nil {
		if cache.IsNotFound(err) {
			return errors.New("state not found or already used")
		}
		return err
	}
	if owner != provider {
		return errors.New("state issued for another provider")
	}
	return nil
}

// findOrCreateUser: si un create concurrente pierde contra el unique de email, relee.
func (s *loginService) findOrCreateUser(ctx context.Context, ident *providers.Identity, now time.Time) (*core.User, bool, error) {
	u, err := s.deps.Repo.GetUserByEmail(ctx, ident.Email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	u, err = s.deps.Repo.CreateUser(ctx, ident.Email, ident.Name, now)
	switch {
	case err == nil:
		return u, true, nil
	case errors.Is(err, core.ErrConflict):
		u, err = s.deps.Repo.GetUserByEmail(ctx, ident.Email)
		if err != nil {
			return nil, false, err
		}
		return u, false, nil
	default:
		return nil, false, err
	}
}

func (s *loginService) Logout(ctx context.Context) string {
	logger.From(ctx).Debug("logout", logger.Layer("service"), logger.Component("auth.login"))
	return "Logged out successfully"
}
