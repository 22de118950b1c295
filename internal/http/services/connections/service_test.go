package connections

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/providers"
	"github.com/dropDatabas3/authhub/internal/providers/providertest"
	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/store/sqlite"
)

type fixture struct {
	svc   Service
	store *sqlite.Store
	idp   *providertest.Fake
	audit *audit.Recorder
	user  *core.User
	other *core.User
	prov  *core.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idp := providertest.New("google")
	reg := providers.NewRegistry()
	reg.Register("google", func() (providers.Provider, error) { return idp, nil })
	rec := audit.NewRecorder(st)

	now := time.Now()
	u, err := st.CreateUser(ctx, "jane@example.com", "Jane", now)
	require.NoError(t, err)
	o, err := st.CreateUser(ctx, "bob@example.com", "Bob", now)
	require.NoError(t, err)
	p, err := st.GetProviderByName(ctx, "google")
	require.NoError(t, err)

	return &fixture{
		svc:   NewService(Deps{Repo: st, Providers: reg, Audit: rec}),
		store: st,
		idp:   idp,
		audit: rec,
		user:  u,
		other: o,
		prov:  p,
	}
}

func (f *fixture) connect(t *testing.T, userID int64, externalID, refresh string) *core.Connection {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	c, err := f.store.UpsertConnection(context.Background(), core.ConnectionUpsert{
		UserID:       userID,
		ProviderID:   f.prov.ID,
		ExternalID:   externalID,
		AccessToken:  "at-" + externalID,
		RefreshToken: refresh,
		ExpiresAt:    &exp,
		Scopes:       []string{"email"},
	}, time.Now())
	require.NoError(t, err)
	return c
}

func (f *fixture) count(t *testing.T, eventType string) int {
	t.Helper()
	evs, err := f.audit.Query(context.Background(), audit.Filter{EventType: eventType})
	require.NoError(t, err)
	return len(evs)
}

func TestScopedLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.connect(t, f.user.ID, "g-1", "rt")

	got, err := f.svc.Get(ctx, f.user.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.svc.Get(ctx, f.other.ID, mine.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.other.ID, mine.ID), core.ErrNotFound)
	_, err = f.svc.Refresh(ctx, f.other.ID, mine.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := f.svc.List(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.connect(t, f.user.ID, "g-1", "rt")

	p, err := f.svc.Me(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", p.User.Email)
	require.Len(t, p.Connections, 1)
	assert.Equal(t, "google", p.Connections[0].ProviderName)
}

func TestDelete_RemovesMappingsAndRevokesUpstream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.connect(t, f.user.ID, "g-1", "rt")

	app, err := f.store.CreateApp(ctx, core.InternalApp{Name: "crm", DisplayName: "CRM"}, time.Now())
	require.NoError(t, err)
	m, err := f.store.CreateMapping(ctx, f.prov.ID, app.ID, conn.ID, time.Now())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.user.ID, conn.ID))

	_, err = f.store.GetMapping(ctx, m.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.svc.Get(ctx, f.user.ID, conn.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []string{"at-g-1"}, f.idp.Revoked)
	assert.Equal(t, 1, f.count(t, audit.ConnectionDeleted))
}

func TestDelete_UpstreamFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.idp.RevokeErr = fmt.Errorf("%w: revoke status 500", providers.ErrUpstream)
	conn := f.connect(t, f.user.ID, "g-1", "rt")

	require.NoError(t, f.svc.Delete(context.Background(), f.user.ID, conn.ID))
}

func TestRefresh_KeepsRefreshToken(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, f.user.ID, "g-1", "rt-orig")

	updated, err := f.svc.Refresh(context.Background(), f.user.ID, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "at-refreshed-1", updated.AccessToken)
	assert.Equal(t, "rt-orig", updated.RefreshToken)
	require.NotNil(t, updated.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *updated.ExpiresAt, time.Minute)
	assert.Equal(t, []string{"email"}, updated.Scopes, "scopes kept when the provider omits them")
	assert.Equal(t, 1, f.count(t, audit.ConnectionRefreshed))
}

func TestRefresh_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no refresh token", func(t *testing.T) {
		f := newFixture(t)
		conn := f.connect(t, f.user.ID, "g-1", "")
		_, err := f.svc.Refresh(ctx, f.user.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNoRefreshToken)
		assert.Equal(t, 1, f.count(t, audit.ConnectionRefreshFailed))
	})

	t.Run("rejected marks revoked", func(t *testing.T) {
		f := newFixture(t)
		f.idp.RefreshErr = fmt.Errorf("%w: status 400: invalid_grant", providers.ErrRefreshRejected)
		conn := f.connect(t, f.user.ID, "g-1", "rt")

		_, err := f.svc.Refresh(ctx, f.user.ID, conn.ID)
		assert.ErrorIs(t, err, ErrRefreshRejected)

		got, err := f.svc.Get(ctx, f.user.ID, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, core.ConnectionRevoked, got.Status)

		_, err = f.svc.Refresh(ctx, f.user.ID, conn.ID)
		assert.ErrorIs(t, err, ErrConnectionRevoked)
	})

	t.Run("transient keeps active", func(t *testing.T) {
		f := newFixture(t)
		f.idp.RefreshErr = fmt.Errorf("%w: status 503", providers.ErrUpstream)
		conn := f.connect(t, f.user.ID, "g-1", "rt")

		_, err := f.svc.Refresh(ctx, f.user.ID, conn.ID)
		assert.ErrorIs(t, err, ErrProviderFailure)
		assert.False(t, errors.Is(err, ErrRefreshRejected))

		got, err := f.svc.Get(ctx, f.user.ID, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, core.ConnectionActive, got.Status)
	})
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := f.connect(t, f.user.ID, "g-1", "rt")

	got, err := f.svc.Revoke(ctx, f.user.ID, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ConnectionRevoked, got.Status)
	assert.Len(t, f.idp.Revoked, 1)

	// idempotente
	_, err = f.svc.Revoke(ctx, f.user.ID, conn.ID)
	require.NoError(t, err)
	assert.Len(t, f.idp.Revoked, 1)
	assert.Equal(t, 1, f.count(t, audit.ConnectionRevoked))

	// un login nuevo (upsert) la reactiva
	again := f.connect(t, f.user.ID, "g-1", "")
	assert.Equal(t, conn.ID, again.ID)
	assert.Equal(t, core.ConnectionActive, again.Status)
}
