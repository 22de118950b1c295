package sqlite

import (
	"context"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

const userColumns = `id, email, name, created_at, updated_at`

func scanUser(r rowScanner) (*core.User, error) {
	var (
		u                core.User
		created, updated int64
	)
	if err := r.Scan(&u.ID, &u.Email, &u.Name, &created, &updated); err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *Store) CreateUser(ctx context.Context, email, name string, now time.Time) (*core.User, error) {
	ms := toMillis(now)
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+userColumns, email, name, ms, ms))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return countQuery(ctx, s.db, `SELECT COUNT(*) FROM users`)
}
