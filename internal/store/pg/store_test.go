package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

// Requiere una base descartable: AUTHHUB_TEST_PG_DSN=postgres://... go test ./internal/store/pg
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AUTHHUB_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("AUTHHUB_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := New(ctx, dsn, Options{MaxConns: 4})
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `TRUNCATE auth_events, app_mappings, connections, internal_apps, users, admin_config RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPG_UpsertConnection_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "pg@example.com", "PG", time.Now())
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "pg@example.com", "PG", time.Now())
	assert.ErrorIs(t, err, core.ErrConflict)

	p, err := s.GetProviderByName(ctx, "google")
	require.NoError(t, err)

	in := core.ConnectionUpsert{UserID: u.ID, ProviderID: p.ID, ExternalID: "e1", AccessToken: "a1", RefreshToken: "r1"}
	first, err := s.UpsertConnection(ctx, in, time.Now())
	require.NoError(t, err)

	in.AccessToken, in.RefreshToken = "a2", ""
	second, err := s.UpsertConnection(ctx, in, time.Now())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "r1", second.RefreshToken)

	n, err := s.count(ctx, `SELECT COUNT(*) FROM connections`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPG_DeleteConnectionRemovesMappings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "del@example.com", "Del", time.Now())
	require.NoError(t, err)
	p, err := s.GetProviderByName(ctx, "google")
	require.NoError(t, err)
	app, err := s.CreateApp(ctx, core.InternalApp{Name: "crm", DisplayName: "CRM"}, time.Now())
	require.NoError(t, err)
	conn, err := s.UpsertConnection(ctx, core.ConnectionUpsert{UserID: u.ID, ProviderID: p.ID, ExternalID: "x", AccessToken: "a"}, time.Now())
	require.NoError(t, err)
	m, err := s.CreateMapping(ctx, p.ID, app.ID, conn.ID, time.Now())
	require.NoError(t, err)

	_, err = s.CreateMapping(ctx, p.ID, app.ID, conn.ID, time.Now())
	assert.ErrorIs(t, err, core.ErrConflict)

	require.NoError(t, s.DeleteConnection(ctx, u.ID, conn.ID))
	_, err = s.GetMapping(ctx, m.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
