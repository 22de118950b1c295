package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
	"github.com/dropDatabas3/authhub/internal/security/password"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

type AdminToken struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Verify(ctx context.Context, plain, ip, userAgent string) (*AdminToken, error)
	ChangePassword(ctx context.Context, current, next string) error
	// SetPassword reemplaza la password sin pedir la actual (CLI de operadores).
	SetPassword(ctx context.Context, next string) error
	// SeedPassword guarda initial solo si todavía no hay password.
	SeedPassword(ctx context.Context, initial string) error
}

type authService struct {
	deps Deps
}

func NewAuthService(d Deps) AuthService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &authService{deps: d}
}

func (s *authService) Verify(ctx context.Context, plain, ip, userAgent string) (*AdminToken, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("admin.auth"), logger.Op("Verify"))

	failed := func(reason string) {
		s.deps.Audit.Record(ctx, audit.Event{
			Type:           audit.AdminLoginFailed,
			UserIdentifier: "admin",
			IP:             ip,
			UserAgent:      userAgent,
			ErrorMessage:   reason,
		})
	}

	hash, err := s.deps.Repo.GetAdminPasswordHash(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Warn("admin verify attempted without a configured password")
			failed("admin_not_configured")
			return nil, ErrInvalidPassword
		}
		return nil, err
	}
	if !password.Verify(plain, hash) {
		failed("invalid_password")
		return nil, ErrInvalidPassword
	}

	tok, exp, err := s.deps.Issuer.IssueAdmin()
	if err != nil {
		return nil, fmt.Errorf("issue admin token: %w", err)
	}
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.AdminLoginSuccess,
		UserIdentifier: "admin",
		IP:             ip,
		UserAgent:      userAgent,
		Success:        true,
	})
	return &AdminToken{Token: tok, ExpiresAt: exp}, nil
}

func (s *authService) ChangePassword(ctx context.Context, current, next string) error {
	hash, err := s.deps.Repo.GetAdminPasswordHash(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrAdminNotConfigured
		}
		return err
	}
	if !password.Verify(current, hash) {
		s.deps.Audit.Record(ctx, audit.Event{
			Type:           audit.AdminPasswordChanged,
			UserIdentifier: "admin",
			Success:        false,
			ErrorMessage:   "invalid_current_password",
		})
		return ErrInvalidPassword
	}
	if err := s.store(ctx, next); err != nil {
		return err
	}
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.AdminPasswordChanged,
		UserIdentifier: "admin",
		Success:        true,
	})
	return nil
}

func (s *authService) SetPassword(ctx context.Context, next string) error {
	if err := s.store(ctx, next); err != nil {
		return err
	}
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.AdminPasswordChanged,
		UserIdentifier: "admin",
		Success:        true,
		Details:        map[string]any{"source": "cli"},
	})
	return nil
}

func (s *authService) SeedPassword(ctx context.Context, initial string) error {
	log := logger.From(ctx).With(logger.Component("admin.auth"), logger.Op("SeedPassword"))

	_, err := s.deps.Repo.GetAdminPasswordHash(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, core.ErrNotFound):
		return err
	}
	if strings.TrimSpace(initial) == "" {
		log.Warn("no admin password configured; admin routes stay locked until one is set with authhubctl")
		return nil
	}
	if err := s.store(ctx, initial); err != nil {
		return err
	}
	log.Info("admin password seeded from configuration")
	return nil
}

func (s *authService) store(ctx context.Context, next string) error {
	if ok, reasons := password.Admin.Validate(next); !ok {
		return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(reasons, ","))
	}
	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	return s.deps.Repo.SetAdminPasswordHash(ctx, hash, s.deps.Now().UTC())
}
