package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/validation"
)

type AppsService interface {
	ListApps(ctx context.Context) ([]core.InternalApp, error)
	GetApp(ctx context.Context, id int64) (*core.InternalApp, error)
	CreateApp(ctx context.Context, in core.InternalApp) (*core.InternalApp, error)
	UpdateApp(ctx context.Context, id int64, patch core.InternalAppPatch) (*core.InternalApp, error)
	DeleteApp(ctx context.Context, id int64) error
}

type appsService struct {
	deps Deps
}

func NewAppsService(d Deps) AppsService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &appsService{deps: d}
}

func (s *appsService) ListApps(ctx context.Context) ([]core.InternalApp, error) {
	apps, err := s.deps.Repo.ListActiveApps(ctx)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []core.InternalApp{}
	}
	return apps, nil
}

// GetApp trata una app soft-deleted como inexistente.
func (s *appsService) GetApp(ctx context.Context, id int64) (*core.InternalApp, error) {
	a, err := s.deps.Repo.GetApp(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != core.AppActive {
		return nil, core.ErrNotFound
	}
	return a, nil
}

func (s *appsService) CreateApp(ctx context.Context, in core.InternalApp) (*core.InternalApp, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Name == "" || in.DisplayName == "" {
		return nil, fmt.Errorf("%w: name and display_name are required", ErrInvalidInput)
	}
	if !validation.ValidAppName(in.Name) {
		return nil, fmt.Errorf("%w: name must be lowercase [a-z0-9_.-], 1-64 chars", ErrInvalidInput)
	}

	app, err := s.deps.Repo.CreateApp(ctx, in, s.deps.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.InternalAppCreated, app)
	return app, nil
}

func (s *appsService) UpdateApp(ctx context.Context, id int64, patch core.InternalAppPatch) (*core.InternalApp, error) {
	if _, err := s.GetApp(ctx, id); err != nil {
		return nil, err
	}
	app, err := s.deps.Repo.UpdateApp(ctx, id, patch, s.deps.Now().UTC())
	if err != nil {
		if errors.Is(err, core.ErrInvalid) {
			return nil, fmt.Errorf("%w: display_name cannot be empty", ErrInvalidInput)
		}
		return nil, err
	}
	if !patch.Empty() {
		s.record(ctx, audit.InternalAppUpdated, app)
	}
	return app, nil
}

func (s *appsService) DeleteApp(ctx context.Context, id int64) error {
	app, err := s.GetApp(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deps.Repo.SoftDeleteApp(ctx, id, s.deps.Now().UTC()); err != nil {
		return err
	}
	s.record(ctx, audit.InternalAppDeleted, app)
	return nil
}

func (s *appsService) record(ctx context.Context, eventType string, app *core.InternalApp) {
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           eventType,
		InternalApp:    app.Name,
		UserIdentifier: "admin",
		Success:        true,
		Details:        map[string]any{"app_id": app.ID},
	})
}
