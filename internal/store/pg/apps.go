package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const appColumns = `id, name, display_name, description, logo_url, api_endpoints, manifest_data, status, created_at, updated_at`

func scanApp(r pgx.Row) (*core.InternalApp, error) {
	var (
		a                               core.InternalApp
		desc, logo, endpoints, manifest *string
	)
	if err := r.Scan(&a.ID, &a.Name, &a.DisplayName, &desc, &logo, &endpoints, &manifest,
		&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	a.Description, a.LogoURL = deref(desc), deref(logo)
	a.APIEndpoints, a.ManifestData = deref(endpoints), deref(manifest)
	return &a, nil
}

func (s *Store) ListActiveApps(ctx context.Context) ([]core.InternalApp, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+appColumns+` FROM internal_apps WHERE status = $1 ORDER BY display_name`, core.AppActive)
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
	return scanApp(s.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM internal_apps WHERE id = $1`, id))
}

func (s *Store) CreateApp(ctx context.Context, app core.InternalApp, now time.Time) (*core.InternalApp, error) {
	a, err := scanApp(s.pool.QueryRow(ctx, `
		INSERT INTO internal_apps (name, display_name, description, logo_url, api_endpoints, manifest_data,
		                           status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $7)
		RETURNING `+appColumns,
		app.Name, app.DisplayName, nullString(app.Description), nullString(app.LogoURL),
		nullString(app.APIEndpoints), nullString(app.ManifestData), now.UTC()))
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
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, core.ErrInvalid
	}
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			args = append(args, nullString(*v))
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("display_name", patch.DisplayName)
	add("description", patch.Description)
	add("logo_url", patch.LogoURL)
	add("api_endpoints", patch.APIEndpoints)
	add("manifest_data", patch.ManifestData)
	args = append(args, now.UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE internal_apps SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, core.ErrNotFound
	}
	return s.GetApp(ctx, id)
}

func (s *Store) SoftDeleteApp(ctx context.Context, id int64, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE internal_apps SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		core.AppDeleted, now.UTC(), id, core.AppActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CountActiveApps(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM internal_apps WHERE status = $1`, core.AppActive)
}
