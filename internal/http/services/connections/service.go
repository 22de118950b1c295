// Package connections gestiona las conexiones del usuario autenticado.
// Todas las lecturas están scopeadas a su user_id.
package connections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/metrics"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/providers"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

var (
	ErrNoRefreshToken    = errors.New("connection has no refresh token")
	ErrConnectionRevoked = errors.New("connection revoked")
	// ErrRefreshRejected: el IdP rechazó el refresh token; la conexión queda revocada.
	ErrRefreshRejected = errors.New("refresh token rejected by provider")
	ErrProviderFailure = errors.New("provider request failed")
)

type Repository interface {
	core.UserRepository
	core.ConnectionRepository
}

type ProviderResolver interface {
	Get(name string) (providers.Provider, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event)
}

// Profile es la respuesta de /api/auth/me.
type Profile struct {
	User        *core.User
	Connections []core.Connection
}

type Service interface {
	List(ctx context.Context, userID int64) ([]core.Connection, error)
	Get(ctx context.Context, userID, id int64) (*core.Connection, error)
	Me(ctx context.Context, userID int64) (*Profile, error)
	Delete(ctx context.Context, userID, id int64) error
	Refresh(ctx context.Context, userID, id int64) (*core.Connection, error)
	Revoke(ctx context.Context, userID, id int64) (*core.Connection, error)
}

type Deps struct {
	Repo      Repository
	Providers ProviderResolver
	Audit     AuditRecorder
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

type service struct {
	deps Deps
}

func NewService(d Deps) Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &service{deps: d}
}

func (s *service) scoped(ctx context.Context, op string, userID, id int64) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("connections"),
		logger.Op(op),
		logger.UserID(userID),
		logger.ConnectionID(id),
	)
}

func (s *service) List(ctx context.Context, userID int64) ([]core.Connection, error) {
	conns, err := s.deps.Repo.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []core.Connection{}
	}
	return conns, nil
}

func (s *service) Get(ctx context.Context, userID, id int64) (*core.Connection, error) {
	return s.deps.Repo.GetConnection(ctx, userID, id)
}

func (s *service) Me(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.deps.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	conns, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Connections: conns}, nil
}

// Delete intenta revocar upstream (best-effort) y borra la conexión con sus mappings.
func (s *service) Delete(ctx context.Context, userID, id int64) error {
	log := s.scoped(ctx, "Delete", userID, id)

	conn, err := s.deps.Repo.GetConnection(ctx, userID, id)
	if err != nil {
		return err
	}
	if conn.Status == core.ConnectionActive {
		s.revokeUpstream(ctx, log, conn)
	}
	if err := s.deps.Repo.DeleteConnection(ctx, userID, id); err != nil {
		return err
	}

	s.record(ctx, audit.ConnectionDeleted, conn, true, "")
	log.Info("connection deleted")
	return nil
}

func (s *service) Refresh(ctx context.Context, userID, id int64) (*core.Connection, error) {
	log := s.scoped(ctx, "Refresh", userID, id)

	conn, err := s.deps.Repo.GetConnection(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if conn.Status == core.ConnectionRevoked {
		s.record(ctx, audit.ConnectionRefreshFailed, conn, false, "connection_revoked")
		return nil, ErrConnectionRevoked
	}
	if conn.RefreshToken == "" {
		s.record(ctx, audit.ConnectionRefreshFailed, conn, false, "no_refresh_token")
		return nil, ErrNoRefreshToken
	}

	adapter, err := s.deps.Providers.Get(conn.ProviderName)
	if err != nil {
		return nil, fmt.Errorf("resolve provider %q: %w", conn.ProviderName, err)
	}

	ts, err := adapter.Refresh(ctx, conn.RefreshToken)
	s.deps.Metrics.ProviderCall(conn.ProviderName, "refresh", err)
	if err != nil {
		if errors.Is(err, providers.ErrRefreshRejected) {
			if serr := s.deps.Repo.SetConnectionStatus(ctx, conn.ID, core.ConnectionRevoked, s.deps.Now().UTC()); serr != nil {
				log.Error("mark revoked failed", logger.Err(serr))
			}
			s.record(ctx, audit.ConnectionRefreshFailed, conn, false, "refresh_rejected")
			log.Warn("refresh rejected, connection revoked", logger.Err(err))
			return nil, fmt.Errorf("%w: %w", ErrRefreshRejected, err)
		}
		s.record(ctx, audit.ConnectionRefreshFailed, conn, false, "provider_error")
		log.Warn("refresh failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	updated, err := s.deps.Repo.UpdateConnectionTokens(ctx, conn.ID, core.TokenUpdate{
		AccessToken:  ts.AccessToken,
		RefreshToken: ts.RefreshToken,
		ExpiresAt:    ts.ExpiresAtPtr(),
		Scopes:       ts.Scopes,
	}, s.deps.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ConnectionRefreshed, updated, true, "")
	log.Info("connection refreshed")
	return updated, nil
}

// Revoke deja la conexión en revoked. Solo un login nuevo la reactiva.
func (s *service) Revoke(ctx context.Context, userID, id int64) (*core.Connection, error) {
	log := s.scoped(ctx, "Revoke", userID, id)

	conn, err := s.deps.Repo.GetConnection(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if conn.Status == core.ConnectionRevoked {
		return conn, nil
	}
	s.revokeUpstream(ctx, log, conn)

	if err := s.deps.Repo.SetConnectionStatus(ctx, conn.ID, core.ConnectionRevoked, s.deps.Now().UTC()); err != nil {
		return nil, err
	}
	updated, err := s.deps.Repo.GetConnection(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ConnectionRevoked, updated, true, "")
	log.Info("connection revoked")
	return updated, nil
}

// revokeUpstream nunca falla la operación: el error se loguea y no se reintenta.
func (s *service) revokeUpstream(ctx context.Context, log *zap.Logger, conn *core.Connection) {
	adapter, err := s.deps.Providers.Get(conn.ProviderName)
	if err != nil {
		log.Warn("upstream revoke skipped", logger.Err(err))
		return
	}
	tok := conn.AccessToken
	if tok == "" {
		tok = conn.RefreshToken
	}
	err = adapter.Revoke(ctx, tok)
	s.deps.Metrics.ProviderCall(conn.ProviderName, "revoke", err)
	if err != nil {
		log.Warn("upstream revoke failed", logger.Err(err))
	}
}

func (s *service) record(ctx context.Context, eventType string, conn *core.Connection, ok bool, reason string) {
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           eventType,
		ExternalApp:    conn.ProviderName,
		UserIdentifier: strconv.FormatInt(conn.UserID, 10),
		Success:        ok,
		ErrorMessage:   reason,
		Details: map[string]any{
			"user_id":       conn.UserID,
			"connection_id": conn.ID,
			"provider":      conn.ProviderName,
		},
	})
}
