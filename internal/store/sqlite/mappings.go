package sqlite

import (
	"context"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const mappingSelect = `
	SELECT m.id, m.external_provider_id, m.internal_app_id, m.connection_id, m.created_at,
	       COALESCE(p.display_name, ''), COALESCE(a.display_name, '')
	FROM app_mappings m
	JOIN connections c ON c.id = m.connection_id
	LEFT JOIN providers p ON p.id = m.external_provider_id
	LEFT JOIN internal_apps a ON a.id = m.internal_app_id`

func scanMapping(r rowScanner) (*core.AppMapping, error) {
	var (
		m       core.AppMapping
		created int64
	)
	if err := r.Scan(&m.ID, &m.ExternalProviderID, &m.InternalAppID, &m.ConnectionID, &created,
		&m.ExternalProviderName, &m.InternalAppName); err != nil {
		return nil, notFound(err)
	}
	m.CreatedAt = fromMillis(created)
	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, providerID, appID, connectionID int64, now time.Time) (*core.AppMapping, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO app_mappings (external_provider_id, internal_app_id, connection_id, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`, providerID, appID, connectionID, toMillis(now)).Scan(&id)
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

// ListMappings solo devuelve mappings cuya conexión existe (JOIN interno).
func (s *Store) ListMappings(ctx context.Context) ([]core.AppMapping, error) {
	rows, err := s.db.QueryContext(ctx, mappingSelect+` ORDER BY m.created_at DESC, m.id DESC`)
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
	return scanMapping(s.db.QueryRowContext(ctx, mappingSelect+` WHERE m.id = ?`, id))
}

func (s *Store) DeleteMapping(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM app_mappings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

