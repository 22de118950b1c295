package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const mappingSelect = `
	SELECT m.id, m.external_provider_id, m.internal_app_id, m.connection_id, m.created_at,
	       COALESCE(p.display_name, ''), COALESCE(a.display_name, '')
	FROM app_mappings m
	JOIN connections c ON c.id = m.connection_id
	LEFT JOIN providers p ON p.id = m.external_provider_id
	LEFT JOIN internal_apps a ON a.id = m.internal_app_id`

func scanMapping(r pgx.Row) (*core.AppMapping, error) {
	var m core.AppMapping
	if err := r.Scan(&m.ID, &m.ExternalProviderID, &m.InternalAppID, &m.ConnectionID, &m.CreatedAt,
		&m.ExternalProviderName, &m.InternalAppName); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, providerID, appID, connectionID int64, now time.Time) (*core.AppMapping, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO app_mappings (external_provider_id, internal_app_id, connection_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, providerID, appID, connectionID, now.UTC()).Scan(&id)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return nil, core.ErrConflict
	case isForeignKeyViolation(err):
		return nil, core.ErrNotFound
	default:
		return nil, err
	}
	return s.GetMapping(ctx, id)
}

func (s *Store) ListMappings(ctx context.Context) ([]core.AppMapping, error) {
	rows, err := s.pool.Query(ctx, mappingSelect+` ORDER BY m.created_at DESC, m.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.AppMapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) GetMapping(ctx context.Context, id int64) (*core.AppMapping, error) {
	return scanMapping(s.pool.QueryRow(ctx, mappingSelect+` WHERE m.id = $1`, id))
}

func (s *Store) DeleteMapping(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_mappings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
