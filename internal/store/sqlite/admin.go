package sqlite

import (
	"context"
	"time"
)

func (s *Store) GetAdminPasswordHash(ctx context.Context) (string, error) {
	var h string
	if err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM admin_config WHERE id = 1`).Scan(&h); err != nil {
		return "", notFound(err)
	}
	return h, nil
}

func (s *Store) SetAdminPasswordHash(ctx context.Context, hash string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_config (id, password_hash, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at`,
		hash, toMillis(now))
	return err
}
