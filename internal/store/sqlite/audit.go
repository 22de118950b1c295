package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

func (s *Store) InsertEvent(ctx context.Context, e *core.AuthEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO auth_events (event_type, external_app, internal_app, user_identifier, ip_address,
		                         user_agent, success, error_message, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		e.EventType, nullString(e.ExternalApp), nullString(e.InternalApp), nullString(e.UserIdentifier),
		nullString(e.IPAddress), nullString(e.UserAgent), boolInt(e.Success), nullString(e.ErrorMessage),
		nullString(e.Details), toMillis(e.CreatedAt),
	).Scan(&e.ID)
}

func (s *Store) QueryEvents(ctx context.Context, f core.AuditFilter) ([]core.AuthEvent, error) {
	where := []string{}
	args := []any{}
	if f.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, f.EventType)
	}
	if f.Success != nil {
		where = append(where, "success = ?")
		args = append(args, boolInt(*f.Success))
	}
	if f.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, toMillis(*f.Since))
	}
	if f.Until != nil {
		where = append(where, "created_at <= ?")
		args = append(args, toMillis(*f.Until))
	}

	q := `SELECT id, event_type, external_app, internal_app, user_identifier, ip_address, user_agent,
	             success, error_message, details, created_at
	      FROM auth_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.AuthEvent{}
	for rows.Next() {
		var (
			e                                   core.AuthEvent
			extApp, intApp, ident, ip, ua, emsg sql.NullString
			details                             sql.NullString
			success                             int
			created                             int64
		)
		if err := rows.Scan(&e.ID, &e.EventType, &extApp, &intApp, &ident, &ip, &ua,
			&success, &emsg, &details, &created); err != nil {
			return nil, err
		}
		e.ExternalApp, e.InternalApp, e.UserIdentifier = extApp.String, intApp.String, ident.String
		e.IPAddress, e.UserAgent, e.ErrorMessage = ip.String, ua.String, emsg.String
		e.Details = details.String
		e.Success = success != 0
		e.CreatedAt = fromMillis(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountEvents agrega todo en una sola consulta para que los totales sean consistentes entre sí.
func (s *Store) CountEvents(ctx context.Context, recentSince time.Time) ([]core.AuditCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, success, COUNT(*),
		       COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM auth_events
		GROUP BY event_type, success`, toMillis(recentSince))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.AuditCount{}
	for rows.Next() {
		var (
			c       core.AuditCount
			success int
		)
		if err := rows.Scan(&c.EventType, &success, &c.Count, &c.Recent); err != nil {
			return nil, err
		}
		c.Success = success != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PurgeEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_events WHERE created_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
