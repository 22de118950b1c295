package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const appColumns = `id, name, display_name, description, logo_url, api_endpoints, manifest_data, status, created_at, updated_at`

func scanApp(r rowScanner) (*core.InternalApp, error) {
	var (
		a                               core.InternalApp
		desc, logo, endpoints, manifest sql.NullString
		created, updated                int64
	)
	if err := r.Scan(&a.ID, &a.Name, &a.DisplayName, &desc, &logo, &endpoints, &manifest,
		&a.Status, &created, &updated); err != nil {
		return nil, notFound(err)
	}
	a.Description, a.LogoURL = desc.String, logo.String
	a.APIEndpoints, a.ManifestData = endpoints.String, manifest.String
	a.CreatedAt, a.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &a, nil
}

func (s *Store) ListActiveApps(ctx context.Context) ([]core.InternalApp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appColumns+` FROM internal_apps WHERE status = ? ORDER BY display_name`, core.AppActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.InternalApp{}
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) GetApp(ctx context.Context, id int64) (*core.InternalApp, error) {
	return scanApp(s.db.QueryRowContext(ctx, `SELECT `+appColumns+` FROM internal_apps WHERE id = ?`, id))
}

func (s *Store) CreateApp(ctx context.Context, app core.InternalApp, now time.Time) (*core.InternalApp, error) {
	ms := toMillis(now)
	a, err := scanApp(s.db.QueryRowContext(ctx, `
		INSERT INTO internal_apps (name, display_name, description, logo_url, api_endpoints, manifest_data,
		                           status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'active', ?, ?)
		RETURNING `+appColumns,
		app.Name, app.DisplayName, nullString(app.Description), nullString(app.LogoURL),
		nullString(app.APIEndpoints), nullString(app.ManifestData), ms, ms))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return a, nil
}

func (s *Store) UpdateApp(ctx context.Context, id int64, patch core.InternalAppPatch, now time.Time) (*core.InternalApp, error) {
	if patch.Empty() {
		return s.GetApp(ctx, id)
	}
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, nullString(*v))
		}
	}
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, core.ErrInvalid
	}
	add("display_name", patch.DisplayName)
	add("description", patch.Description)
	add("logo_url", patch.LogoURL)
	add("api_endpoints", patch.APIEndpoints)
	add("manifest_data", patch.ManifestData)
	sets = append(sets, "updated_at = ?")
	args = append(args, toMillis(now), id)

	res, err := s.db.ExecContext(ctx, `UPDATE internal_apps SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return s.GetApp(ctx, id)
}

func (s *Store) SoftDeleteApp(ctx context.Context, id int64, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE internal_apps SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		core.AppDeleted, toMillis(now), id, core.AppActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CountActiveApps(ctx context.Context) (int64, error) {
	return countQuery(ctx, s.db, `SELECT COUNT(*) FROM internal_apps WHERE status = ?`, core.AppActive)
}
