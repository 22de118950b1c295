package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const providerColumns = `id, name, display_name, oauth_config, scopes, enabled, created_at`

func scanProvider(r pgx.Row) (*core.Provider, error) {
	var (
		p      core.Provider
		scopes string
	)
	// oauth_config es JSONB: pgx decodifica directo al struct.
	if err := r.Scan(&p.ID, &p.Name, &p.DisplayName, &p.OAuthConfig, &scopes, &p.Enabled, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	p.Scopes = core.SplitScopes(scopes)
	return &p, nil
}

func (s *Store) ListProviders(ctx context.Context) ([]core.Provider, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) GetProviderByID(ctx context.Context, id int64) (*core.Provider, error) {
	return scanProvider(s.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id))
}

func (s *Store) GetProviderByName(ctx context.Context, name string) (*core.Provider, error) {
	return scanProvider(s.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE name = $1`, name))
}
