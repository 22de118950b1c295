package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const connectionSelect = `
	SELECT c.id, c.user_id, c.provider_id, p.name, c.external_id, c.access_token,
	       c.refresh_token, c.expires_at, c.scopes, c.status, c.created_at, c.updated_at
	FROM connections c
	JOIN providers p ON p.id = c.provider_id`

func scanConnection(r pgx.Row) (*core.Connection, error) {
	var (
		c       core.Connection
		refresh *string
		scopes  string
	)
	err := r.Scan(&c.ID, &c.UserID, &c.ProviderID, &c.ProviderName, &c.ExternalID, &c.AccessToken,
		&refresh, &c.ExpiresAt, &scopes, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	c.RefreshToken = deref(refresh)
	c.Scopes = core.SplitScopes(scopes)
	return &c, nil
}

func (s *Store) queryConnections(ctx context.Context, q string, args ...any) ([]core.Connection, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertConnection(ctx context.Context, in core.ConnectionUpsert, now time.Time) (*core.Connection, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO connections (user_id, provider_id, external_id, access_token, refresh_token,
		                         expires_at, scopes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8, $8)
		ON CONFLICT (user_id, provider_id, external_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, connections.refresh_token),
			expires_at    = EXCLUDED.expires_at,
			scopes        = EXCLUDED.scopes,
			status        = 'active',
			updated_at    = EXCLUDED.updated_at
		RETURNING id`,
		in.UserID, in.ProviderID, in.ExternalID, in.AccessToken, nullString(in.RefreshToken),
		in.ExpiresAt, core.JoinScopes(in.Scopes), now.UTC(),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, core.ErrInvalid
		}
		return nil, err
	}
	return s.GetConnectionByID(ctx, id)
}

func (s *Store) ListConnectionsByUser(ctx context.Context, userID int64) ([]core.Connection, error) {
	return s.queryConnections(ctx, connectionSelect+` WHERE c.user_id = $1 ORDER BY c.created_at DESC, c.id DESC`, userID)
}

func (s *Store) ListConnections(ctx context.Context) ([]core.Connection, error) {
	return s.queryConnections(ctx, connectionSelect+` ORDER BY c.created_at DESC, c.id DESC`)
}

func (s *Store) GetConnection(ctx context.Context, userID, id int64) (*core.Connection, error) {
	return scanConnection(s.pool.QueryRow(ctx, connectionSelect+` WHERE c.id = $1 AND c.user_id = $2`, id, userID))
}

func (s *Store) GetConnectionByID(ctx context.Context, id int64) (*core.Connection, error) {
	return scanConnection(s.pool.QueryRow(ctx, connectionSelect+` WHERE c.id = $1`, id))
}

func (s *Store) UpdateConnectionTokens(ctx context.Context, id int64, upd core.TokenUpdate, now time.Time) (*core.Connection, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE connections SET
			access_token  = $1,
			refresh_token = COALESCE($2, refresh_token),
			expires_at    = $3,
			scopes        = CASE WHEN $4 = '' THEN scopes ELSE $4 END,
			updated_at    = $5
		WHERE id = $6`,
		upd.AccessToken, nullString(upd.RefreshToken), upd.ExpiresAt, core.JoinScopes(upd.Scopes), now.UTC(), id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, core.ErrNotFound
	}
	return s.GetConnectionByID(ctx, id)
}

func (s *Store) SetConnectionStatus(ctx context.Context, id int64, status string, now time.Time) error {
	if status != core.ConnectionActive && status != core.ConnectionRevoked {
		return core.ErrInvalid
	}
	tag, err := s.pool.Exec(ctx, `UPDATE connections SET status = $1, updated_at = $2 WHERE id = $3`, status, now.UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteConnection(ctx context.Context, userID, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var found int64
	if err := tx.QueryRow(ctx, `SELECT id FROM connections WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID).Scan(&found); err != nil {
		return notFound(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM app_mappings WHERE connection_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CountConnectionsByStatus(ctx context.Context, status string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM connections WHERE status = $1`, status)
}
