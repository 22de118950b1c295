package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhub/internal/providers"
)

type fakeGoogle struct {
	*httptest.Server
	revoked []string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	fg := &fakeGoogle{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			switch r.Form.Get("code") {
			case "good-code":
				writeJSON(w, http.StatusOK, map[string]any{
					"access_token":  "at-1",
					"refresh_token": "rt-1",
					"token_type":    "Bearer",
					"expires_in":    3600,
					"scope":         "email profile",
				})
			case "no-access":
				writeJSON(w, http.StatusOK, map[string]any{"token_type": "Bearer"})
			default:
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			}
		case "refresh_token":
			switch r.Form.Get("refresh_token") {
			case "rt-1":
				// Google no reemite refresh_token en el refresh
				writeJSON(w, http.StatusOK, map[string]any{
					"access_token": "at-2", "token_type": "Bearer", "expires_in": 1800,
				})
			case "rt-flaky":
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "backend_error"})
			default:
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			}
		}
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer at-1":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "g-123", "email": "jane@example.com", "name": "Jane", "picture": "https://pic",
			})
		case "Bearer partial":
			writeJSON(w, http.StatusOK, map[string]any{"id": "g-1", "email": "x@example.com"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_token"})
		}
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		tok := r.Form.Get("token")
		if tok == "unknown" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fg.revoked = append(fg.revoked, tok)
		w.WriteHeader(http.StatusOK)
	})
	fg.Server = httptest.NewServer(mux)
	t.Cleanup(fg.Close)
	return fg
}

func newTestProvider(t *testing.T, fg *fakeGoogle) *Provider {
	t.Helper()
	p, err := New(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost:3001/api/auth/google/callback",
		Scopes:       []string{"email", "profile"},
		AuthURL:      fg.URL + "/auth",
		TokenURL:     fg.URL + "/token",
		UserInfoURL:  fg.URL + "/userinfo",
		RevokeURL:    fg.URL + "/revoke",
		HTTPTimeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{ClientID: "x"})
	assert.Error(t, err)
	_, err = New(Config{ClientID: "x", ClientSecret: "y"})
	assert.Error(t, err)
}

func TestNew_DefaultsToGoogleEndpoints(t *testing.T) {
	p, err := New(Config{ClientID: "cid", ClientSecret: "sec", RedirectURL: "http://localhost/cb"})
	require.NoError(t, err)

	u, err := url.Parse(p.ConsentURL("st"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "/o/oauth2/auth", u.Path)
	assert.Equal(t, "https://oauth2.googleapis.com/token", p.oauth.Endpoint.TokenURL)
	assert.Equal(t, DefaultUserInfoURL, p.userInfoURL)
}

func TestConsentURL(t *testing.T) {
	fg := newFakeGoogle(t)
	p := newTestProvider(t, fg)

	u, err := url.Parse(p.ConsentURL("st-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "email profile", q.Get("scope"))
}

func TestExchange(t *testing.T) {
	fg := newFakeGoogle(t)
	p := newTestProvider(t, fg)

	before := time.Now()
	ts, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", ts.AccessToken)
	assert.Equal(t, "rt-1", ts.RefreshToken)
	assert.InDelta(t, 3600, ts.ExpiresIn, 5)
	assert.WithinDuration(t, before.Add(time.Hour), ts.ExpiresAt, 5*time.Second)
	assert.Equal(t, []string{"email", "profile"}, ts.Scopes)

	_, err = p.Exchange(context.Background(), "bad-code")
	assert.ErrorIs(t, err, providers.ErrTokenExchange)
	assert.NotContains(t, err.Error(), "bad-code")

	_, err = p.Exchange(context.Background(), "no-access")
	assert.ErrorIs(t, err, providers.ErrTokenExchange)
}

func TestFetchIdentity(t *testing.T) {
	fg := newFakeGoogle(t)
	p := newTestProvider(t, fg)

	id, err := p.FetchIdentity(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, &providers.Identity{ExternalID: "g-123", Email: "jane@example.com", Name: "Jane", Picture: "https://pic"}, id)

	_, err = p.FetchIdentity(context.Background(), "partial")
	assert.ErrorIs(t, err, providers.ErrIncompleteIdentity)

	_, err = p.FetchIdentity(context.Background(), "expired")
	assert.ErrorIs(t, err, providers.ErrUpstream)
}

func TestRefresh(t *testing.T) {
	fg := newFakeGoogle(t)
	p := newTestProvider(t, fg)

	ts, err := p.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", ts.AccessToken)
	assert.Equal(t, "rt-1", ts.RefreshToken, "original refresh token must be preserved")
	assert.InDelta(t, 1800, ts.ExpiresIn, 5)

	_, err = p.Refresh(context.Background(), "rt-revoked")
	assert.ErrorIs(t, err, providers.ErrRefreshRejected)

	_, err = p.Refresh(context.Background(), "rt-flaky")
	assert.ErrorIs(t, err, providers.ErrUpstream)
	assert.False(t, errors.Is(err, providers.ErrRefreshRejected))
}

func TestRevoke(t *testing.T) {
	fg := newFakeGoogle(t)
	p := newTestProvider(t, fg)

	require.NoError(t, p.Revoke(context.Background(), "at-1"))
	assert.Equal(t, []string{"at-1"}, fg.revoked)

	err := p.Revoke(context.Background(), "unknown")
	assert.ErrorIs(t, err, providers.ErrUpstream)

	assert.NoError(t, p.Revoke(context.Background(), ""))
}

func TestTimeoutIsUpstreamError(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	p, err := New(Config{
		ClientID: "c", ClientSecret: "s", RedirectURL: "http://cb",
		UserInfoURL: slow.URL, HTTPTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = p.FetchIdentity(context.Background(), "tok")
	assert.ErrorIs(t, err, providers.ErrUpstream)
}
