package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/store/core"
)

type MappingsService interface {
	ListMappings(ctx context.Context) ([]core.AppMapping, error)
	CreateMapping(ctx context.Context, providerID, appID, connectionID int64) (*core.AppMapping, error)
	DeleteMapping(ctx context.Context, id int64) error
	// ListConnections devuelve todas las conexiones para la UI de mapping.
	ListConnections(ctx context.Context) ([]core.Connection, error)
}

type mappingsService struct {
	deps Deps
}

func NewMappingsService(d Deps) MappingsService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &mappingsService{deps: d}
}

func (s *mappingsService) ListMappings(ctx context.Context) ([]core.AppMapping, error) {
	ms, err := s.deps.Repo.ListMappings(ctx)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []core.AppMapping{}
	}
	return ms, nil
}

// CreateMapping: ids faltantes => ErrInvalidInput; filas inexistentes => core.ErrNotFound;
// terna duplicada => core.ErrConflict (la primera fila no se toca).
func (s *mappingsService) CreateMapping(ctx context.Context, providerID, appID, connectionID int64) (*core.AppMapping, error) {
	details := map[string]any{
		"external_provider_id": providerID,
		"internal_app_id":      appID,
		"connection_id":        connectionID,
	}
	fail := func(reason string, err error) (*core.AppMapping, error) {
		s.deps.Audit.Record(ctx, audit.Event{
			Type:           audit.MappingFailed,
			UserIdentifier: "admin",
			ErrorMessage:   reason,
			Details:        details,
		})
		return nil, err
	}

	if providerID <= 0 || appID <= 0 || connectionID <= 0 {
		return fail("missing_fields", fmt.Errorf("%w: external_provider_id, internal_app_id and connection_id are required", ErrInvalidInput))
	}

	prov, err := s.deps.Repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return fail("provider_not_found", err)
	}
	app, err := s.deps.Repo.GetApp(ctx, appID)
	if err != nil {
		return fail("app_not_found", err)
	}
	if app.Status != core.AppActive {
		return fail("app_not_found", core.ErrNotFound)
	}
	conn, err := s.deps.Repo.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return fail("connection_not_found", err)
	}
	if conn.ProviderID != prov.ID {
		return fail("provider_mismatch", fmt.Errorf("%w: connection belongs to another provider", ErrInvalidInput))
	}

	m, err := s.deps.Repo.CreateMapping(ctx, providerID, appID, connectionID, s.deps.Now().UTC())
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			return fail("duplicate", err)
		}
		return fail("persistence", err)
	}

	details["mapping_id"] = m.ID
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.MappingCreated,
		ExternalApp:    prov.Name,
		InternalApp:    app.Name,
		UserIdentifier: "admin",
		Success:        true,
		Details:        details,
	})
	return m, nil
}

func (s *mappingsService) DeleteMapping(ctx context.Context, id int64) error {
	m, err := s.deps.Repo.GetMapping(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deps.Repo.DeleteMapping(ctx, id); err != nil {
		return err
	}
	s.deps.Audit.Record(ctx, audit.Event{
		Type:           audit.MappingDeleted,
		ExternalApp:    m.ExternalProviderName,
		InternalApp:    m.InternalAppName,
		UserIdentifier: "admin",
		Success:        true,
		Details:        map[string]any{"mapping_id": m.ID, "connection_id": m.ConnectionID},
	})
	return nil
}

func (s *mappingsService) ListConnections(ctx context.Context) ([]core.Connection, error) {
	conns, err := s.deps.Repo.ListConnections(ctx)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []core.Connection{}
	}
	return conns, nil
}
