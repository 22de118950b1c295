package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const providerColumns = `id, name, display_name, oauth_config, scopes, enabled, created_at`

func scanProvider(r rowScanner) (*core.Provider, error) {
	var (
		p       core.Provider
		cfg     string
		scopes  string
		enabled int
		created int64
	)
	if err := r.Scan(&p.ID, &p.Name, &p.DisplayName, &cfg, &scopes, &enabled, &created); err != nil {
		return nil, notFound(err)
	}
	if cfg != "" {
		if err := json.Unmarshal([]byte(cfg), &p.OAuthConfig); err != nil {
			return nil, fmt.Errorf("sqlite: provider %q oauth_config: %w", p.Name, err)
		}
	}
	p.Scopes = core.SplitScopes(scopes)
	p.Enabled = enabled != 0
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

func (s *Store) ListProviders(ctx context.Context) ([]core.Provider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+providerColumns+` FROM providers ORDER BY display_name`)
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
	return scanProvider(s.db.QueryRowContext(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = ?`, id))
}

func (s *Store) GetProviderByName(ctx context.Context, name string) (*core.Provider, error) {
	return scanProvider(s.db.QueryRowContext(ctx, `SELECT `+providerColumns+` FROM providers WHERE name = ?`, name))
}
