package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/cache"
	"github.com/dropDatabas3/authhub/internal/jwt"
	"github.com/dropDatabas3/authhub/internal/providers"
	"github.com/dropDatabas3/authhub/internal/providers/providertest"
	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/store/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type harness struct {
	svc    LoginService
	store  *sqlite.Store
	cache  cache.Client
	idp    *providertest.Fake
	issuer *jwt.Issuer
	audit  *audit.Recorder
}

func newHarness(t *testing.T, requireState bool, wrap func(Repository) Repository) *harness {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cache.New(cache.Config{Kind: "memory", DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxEntries: 100})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	iss, err := jwt.NewIssuer(testSecret)
	require.NoError(t, err)

	idp := providertest.New("google")
	reg := providers.NewRegistry()
	reg.Register("google", func() (providers.Provider, error) { return idp, nil })

	rec := audit.NewRecorder(st)
	var repo Repository = st
	if wrap != nil {
		repo = wrap(st)
	}

	svc := NewLoginService(Deps{
		Repo:         repo,
		Providers:    reg,
		Cache:        c,
		Issuer:       iss,
		Audit:        rec,
		RequireState: requireState,
		StateTTL:     time.Minute,
	})
	return &harness{svc: svc, store: st, cache: c, idp: idp, issuer: iss, audit: rec}
}

func (h *harness) consentState(t *testing.T) string {
	t.Helper()
	raw, err := h.svc.ConsentURL(context.Background(), "google")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func (h *harness) events(t *testing.T, eventType string) []core.AuthEvent {
	t.Helper()
	evs, err := h.audit.Query(context.Background(), audit.Filter{EventType: eventType})
	require.NoError(t, err)
	return evs
}

func janeGrant(refresh string) providertest.Grant {
	return providertest.Grant{
		Identity: providers.Identity{ExternalID: "g-1", Email: "jane@example.com", Name: "Jane"},
		Tokens: providers.TokenSet{
			RefreshToken: refresh,
			Scopes:       []string{"email", "profile"},
			ExpiresIn:    3600,
		},
	}
}

func TestCompleteLogin_NewUser(t *testing.T) {
	h := newHarness(t, true, nil)
	ctx := context.Background()
	h.idp.AddGrant("code-1", janeGrant("rt-1"))

	state := h.consentState(t)
	res, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "code-1", State: state, IP: "10.0.0.9"})
	require.NoError(t, err)
	assert.True(t, res.NewUser)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, core.ConnectionActive, res.Connection.Status)

	claims, err := h.issuer.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	conns, err := h.store.ListConnectionsByUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "rt-1", conns[0].RefreshToken)

	ok := h.events(t, audit.OAuthLoginSuccess)
	require.Len(t, ok, 1)
	assert.Equal(t, "jane@example.com", ok[0].UserIdentifier)
	assert.Equal(t, "10.0.0.9", ok[0].IPAddress)
	assert.Contains(t, ok[0].Details, `"connection_id"`)
	assert.Empty(t, h.events(t, audit.OAuthLoginFailed))

	// el state es de un solo uso
	_, err = h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "code-1", State: state})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteLogin_IdempotentUpsertKeepsRefreshToken(t *testing.T) {
	h := newHarness(t, false, nil)
	ctx := context.Background()
	h.idp.AddGrant("first", janeGrant("rt-1"))
	h.idp.AddGrant("second", janeGrant(""))

	r1, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "first"})
	require.NoError(t, err)
	r2, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "second"})
	require.NoError(t, err)

	assert.False(t, r2.NewUser)
	assert.Equal(t, r1.User.ID, r2.User.ID)
	assert.Equal(t, r1.Connection.ID, r2.Connection.ID)

	conns, err := h.store.ListConnectionsByUser(ctx, r1.User.ID)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "rt-1", conns[0].RefreshToken)
	assert.Equal(t, "at-second", conns[0].AccessToken)

	n, err := h.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, h.events(t, audit.OAuthLoginSuccess), 2)
}

func TestCompleteLogin_SameEmailDifferentIdentity(t *testing.T) {
	h := newHarness(t, false, nil)
	ctx := context.Background()
	h.idp.AddGrant("a", janeGrant("rt-a"))
	other := janeGrant("rt-b")
	other.Identity.ExternalID = "g-2"
	h.idp.AddGrant("b", other)

	r1, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "a"})
	require.NoError(t, err)
	r2, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "b"})
	require.NoError(t, err)

	assert.Equal(t, r1.User.ID, r2.User.ID)
	assert.NotEqual(t, r1.Connection.ID, r2.Connection.ID)
}

func TestCompleteLogin_RejectedCode(t *testing.T) {
	h := newHarness(t, true, nil)
	ctx := context.Background()

	state := h.consentState(t)
	_, err := h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "bogus", State: state})
	require.ErrorIs(t, err, ErrAuthFailed)
	assert.ErrorIs(t, err, providers.ErrTokenExchange)

	n, err := h.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	conns, err := h.store.ListConnections(ctx)
	require.NoError(t, err)
	assert.Empty(t, conns)

	failed := h.events(t, audit.OAuthLoginFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, failTokenExchange, failed[0].ErrorMessage)
	assert.Empty(t, h.events(t, audit.OAuthLoginSuccess))
}

func TestCompleteLogin_Failures(t *testing.T) {
	cases := []struct {
		name     string
		req      func(h *harness) LoginRequest
		want     error
		category string
	}{
		{
			name:     "missing state",
			req:      func(*harness) LoginRequest { return LoginRequest{Provider: "google", Code: "c"} },
			want:     ErrInvalidState,
			category: failInvalidState,
		},
		{
			name:     "unknown state",
			req:      func(*harness) LoginRequest { return LoginRequest{Provider: "google", Code: "c", State: "nope"} },
			want:     ErrInvalidState,
			category: failInvalidState,
		},
		{
			name: "state for another provider",
			req: func(h *harness) LoginRequest {
				require.NoError(t, h.cache.Set(context.Background(), StateKeyPrefix+"s1", "github", time.Minute))
				return LoginRequest{Provider: "google", Code: "c", State: "s1"}
			},
			want:     ErrInvalidState,
			category: failInvalidState,
		},
		{
			name: "provider error param",
			req: func(h *harness) LoginRequest {
				return LoginRequest{Provider: "google", ProviderError: "access_denied"}
			},
			want:     ErrAuthFailed,
			category: failProviderError,
		},
		{
			name: "incomplete identity",
			req: func(h *harness) LoginRequest {
				g := janeGrant("rt")
				g.Identity.Name = ""
				h.idp.AddGrant("partial", g)
				return LoginRequest{Provider: "google", Code: "partial", State: h.consentState(t)}
			},
			want:     ErrAuthFailed,
			category: failIncompleteIdentity,
		},
		{
			name: "unregistered provider",
			req: func(h *harness) LoginRequest {
				require.NoError(t, h.cache.Set(context.Background(), StateKeyPrefix+"s2", "github", time.Minute))
				return LoginRequest{Provider: "github", Code: "c", State: "s2"}
			},
			want:     ErrUnknownProvider,
			category: failUnknownProvider,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, true, nil)
			_, err := h.svc.CompleteLogin(context.Background(), tc.req(h))
			require.ErrorIs(t, err, tc.want)

			failed := h.events(t, audit.OAuthLoginFailed)
			require.Len(t, failed, 1, "exactly one audit event per attempt")
			assert.Equal(t, tc.category, failed[0].ErrorMessage)
			assert.Empty(t, h.events(t, audit.OAuthLoginSuccess))
		})
	}
}

// racingRepo simula un create concurrente que gana la carrera por el email.
type racingRepo struct {
	Repository
	raced bool
}

func (r *racingRepo) CreateUser(ctx context.Context, email, name string, now time.Time) (*core.User, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.Repository.CreateUser(ctx, email, "winner", now); err != nil {
			return nil, err
		}
		return nil, core.ErrConflict
	}
	return r.Repository.CreateUser(ctx, email, name, now)
}

func TestCompleteLogin_ConcurrentCreateRereads(t *testing.T) {
	h := newHarness(t, false, func(r Repository) Repository { return &racingRepo{Repository: r} })
	h.idp.AddGrant("c", janeGrant("rt"))

	res, err := h.svc.CompleteLogin(context.Background(), LoginRequest{Provider: "google", Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "winner", res.User.Name)
	assert.False(t, res.NewUser)
}

func TestConsentURL(t *testing.T) {
	h := newHarness(t, true, nil)
	ctx := context.Background()

	state := h.consentState(t)
	owner, err := h.cache.Get(ctx, StateKeyPrefix+state)
	require.NoError(t, err)
	assert.Equal(t, "google", owner)

	_, err = h.svc.ConsentURL(ctx, "github")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, false, nil)
	assert.NotEmpty(t, h.svc.Logout(context.Background()))
}

func TestCompleteLogin_AuditSurvivesCancelledRequest(t *testing.T) {
	h := newHarness(t, true, nil)
	h.idp.AddGrant("code-1", janeGrant("rt-1"))
	state := h.consentState(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // el cliente cortó antes de que terminara el callback
	_, _ = h.svc.CompleteLogin(ctx, LoginRequest{Provider: "google", Code: "code-1", State: state})

	all := h.events(t, "")
	require.Len(t, all, 1, "exactly one audit event per attempt")
	assert.Contains(t, []string{audit.OAuthLoginSuccess, audit.OAuthLoginFailed}, all[0].EventType)
}
