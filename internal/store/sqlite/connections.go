package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const connectionSelect = `
	SELECT c.id, c.user_id, c.provider_id, p.name, c.external_id, c.access_token,
	       c.refresh_token, c.expires_at, c.scopes, c.status, c.created_at, c.updated_at
	FROM connections c
	JOIN providers p ON p.id = c.provider_id`

func scanConnection(r rowScanner) (*core.Connection, error) {
	var (
		c                core.Connection
		refresh          sql.NullString
		expires          sql.NullInt64
		scopes           string
		created, updated int64
	)
	err := r.Scan(&c.ID, &c.UserID, &c.ProviderID, &c.ProviderName, &c.ExternalID, &c.AccessToken,
		&refresh, &expires, &scopes, &c.Status, &created, &updated)
	if err != nil {
		return nil, notFound(err)
	}
	c.RefreshToken = refresh.String
	c.ExpiresAt = timePtr(expires)
	c.Scopes = core.SplitScopes(scopes)
	c.CreatedAt, c.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &c, nil
}

func (s *Store) queryConnections(ctx context.Context, q string, args ...any) ([]core.Connection, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
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

// UpsertConnection: INSERT ... ON CONFLICT DO UPDATE conserva el id de la fila
// (INSERT OR REPLACE la borraría y con ella sus mappings).
func (s *Store) UpsertConnection(ctx context.Context, in core.ConnectionUpsert, now time.Time) (*core.Connection, error) {
	ms := toMillis(now)
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO connections (user_id, provider_id, external_id, access_token, refresh_token,
		                         expires_at, scopes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
		ON CONFLICT (user_id, provider_id, external_id) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = COALESCE(excluded.refresh_token, connections.refresh_token),
			expires_at    = excluded.expires_at,
			scopes        = excluded.scopes,
			status        = 'active',
			updated_at    = excluded.updated_at
		RETURNING id`,
		in.UserID, in.ProviderID, in.ExternalID, in.AccessToken, nullString(in.RefreshToken),
		nullMillis(in.ExpiresAt), core.JoinScopes(in.Scopes), ms, ms,
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
	return s.queryConnections(ctx, connectionSelect+` WHERE c.user_id = ? ORDER BY c.created_at DESC, c.id DESC`, userID)
}

func (s *Store) ListConnections(ctx context.Context) ([]core.Connection, error) {
	return s.queryConnections(ctx, connectionSelect+` ORDER BY c.created_at DESC, c.id DESC`)
}

func (s *Store) GetConnection(ctx context.Context, userID, id int64) (*core.Connection, error) {
	return scanConnection(s.db.QueryRowContext(ctx, connectionSelect+` WHERE c.id = ? AND c.user_id = ?`, id, userID))
}

func (s *Store) GetConnectionByID(ctx context.Context, id int64) (*core.Connection, error) {
	return scanConnection(s.db.QueryRowContext(ctx, connectionSelect+` WHERE c.id = ?`, id))
}

func (s *Store) UpdateConnectionTokens(ctx context.Context, id int64, upd core.TokenUpdate, now time.Time) (*core.Connection, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE connections SET
			access_token  = ?,
			refresh_token = COALESCE(?, refresh_token),
			expires_at    = ?,
			scopes        = CASE WHEN ? = '' THEN scopes ELSE ? END,
			updated_at    = ?
		WHERE id = ?`,
		upd.AccessToken, nullString(upd.RefreshToken), nullMillis(upd.ExpiresAt),
		core.JoinScopes(upd.Scopes), core.JoinScopes(upd.Scopes), toMillis(now), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return s.GetConnectionByID(ctx, id)
}

func (s *Store) SetConnectionStatus(ctx context.Context, id int64, status string, now time.Time) error {
	if status != core.ConnectionActive && status != core.ConnectionRevoked {
		return core.ErrInvalid
	}
	res, err := s.db.ExecContext(ctx, `UPDATE connections SET status = ?, updated_at = ? WHERE id = ?`,
		status, toMillis(now), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteConnection borra explícitamente los mappings además del ON DELETE CASCADE,
// así el invariante se sostiene aunque foreign_keys esté apagado.
func (s *Store) DeleteConnection(ctx context.Context, userID, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var found int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM connections WHERE id = ? AND user_id = ?`, id, userID).Scan(&found)
	if err != nil {
		return notFound(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM app_mappings WHERE connection_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CountConnectionsByStatus(ctx context.Context, status string) (int64, error) {
	return countQuery(ctx, s.db, `SELECT COUNT(*) FROM connections WHERE status = ?`, status)
}
