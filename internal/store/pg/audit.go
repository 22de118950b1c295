package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

func (s *Store) InsertEvent(ctx context.Context, e *core.AuthEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO auth_events (event_type, external_app, internal_app, user_identifier, ip_address,
		                         user_agent, success, error_message, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		e.EventType, nullString(e.ExternalApp), nullString(e.InternalApp), nullString(e.UserIdentifier),
		nullString(e.IPAddress), nullString(e.UserAgent), e.Success, nullString(e.ErrorMessage),
		nullString(e.Details), e.CreatedAt.UTC(),
	).Scan(&e.ID)
}

func (s *Store) QueryEvents(ctx context.Context, f core.AuditFilter) ([]core.AuthEvent, error) {
	where := []string{}
	args := []any{}
	cond := func(expr string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(expr, len(args)))
	}
	if f.EventType != "" {
		cond("event_type = $%d", f.EventType)
	}
	if f.Success != nil {
		cond("success = $%d", *f.Success)
	}
	if f.Since != nil {
		cond("created_at >= $%d", f.Since.UTC())
	}
	if f.Until != nil {
		cond("created_at <= $%d", f.Until.UTC())
	}

	q := `SELECT id, event_type, external_app, internal_app, user_identifier, ip_address, user_agent,
	             success, error_message, details, created_at
	      FROM auth_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.AuthEvent{}
	for rows.Next() {
		var (
			e                                            core.AuthEvent
			extApp, intApp, ident, ip, ua, emsg, details *string
		)
		if err := rows.Scan(&e.ID, &e.EventType, &extApp, &intApp, &ident, &ip, &ua,
			&e.Success, &emsg, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ExternalApp, e.InternalApp, e.UserIdentifier = deref(extApp), deref(intApp), deref(ident)
		e.IPAddress, e.UserAgent, e.ErrorMessage = deref(ip), deref(ua), deref(emsg)
		e.Details = deref(details)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CountEvents(ctx context.Context, recentSince time.Time) ([]core.AuditCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_type, success, COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1)
		FROM auth_events
		GROUP BY event_type, success`, recentSince.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.AuditCount{}
	for rows.Next() {
		var c core.AuditCount
		if err := rows.Scan(&c.EventType, &c.Success, &c.Count, &c.Recent); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PurgeEvents(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auth_events WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
