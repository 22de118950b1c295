// Package providertest provee un providers.Provider en memoria para tests.
package providertest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dropDatabas3/authhub/internal/providers"
)

// Grant es lo que el IdP devuelve para un authorization code.
type Grant struct {
	Identity providers.Identity
	Tokens   providers.TokenSet
}

type Fake struct {
	ProviderName string

	mu         sync.Mutex
	grants     map[string]Grant
	identities map[string]providers.Identity
	RefreshErr error
	RevokeErr  error
	Revoked    []string
	Refreshed  []string
}

var _ providers.Provider = (*Fake)(nil)

func New(name string) *Fake {
	return &Fake{
		ProviderName: name,
		grants:       map[string]Grant{},
		identities:   map[string]providers.Identity{},
	}
}

// AddGrant registra un code válido.
func (f *Fake) AddGrant(code string, g Grant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[code] = g
}

func (f *Fake) Name() string { return f.ProviderName }

func (f *Fake) ConsentURL(state string) string {
	return "https://idp.example/auth?access_type=offline&prompt=consent&state=" + url.QueryEscape(state)
}

func (f *Fake) Exchange(_ context.Context, code string) (*providers.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.grants[code]
	if !ok {
		return nil, fmt.Errorf("%w: invalid_grant", providers.ErrTokenExchange)
	}
	ts := g.Tokens
	if ts.AccessToken == "" {
		ts.AccessToken = "at-" + code
	}
	if ts.ExpiresIn > 0 && ts.ExpiresAt.IsZero() {
		ts.ExpiresAt = time.Now().UTC().Add(time.Duration(ts.ExpiresIn) * time.Second)
	}
	f.identities[ts.AccessToken] = g.Identity
	return &ts, nil
}

func (f *Fake) FetchIdentity(_ context.Context, accessToken string) (*providers.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.identities[accessToken]
	if !ok {
		return nil, fmt.Errorf("%w: userinfo status 401", providers.ErrUpstream)
	}
	if id.ExternalID == "" || id.Email == "" || id.Name == "" {
		return nil, providers.ErrIncompleteIdentity
	}
	return &id, nil
}

// Refresh emite un access token nuevo y nunca un refresh token nuevo.
func (f *Fake) Refresh(_ context.Context, refreshToken string) (*providers.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	f.Refreshed = append(f.Refreshed, refreshToken)
	return &providers.TokenSet{
		AccessToken:  fmt.Sprintf("at-refreshed-%d", len(f.Refreshed)),
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}, nil
}

func (f *Fake) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RevokeErr != nil {
		return f.RevokeErr
	}
	f.Revoked = append(f.Revoked, token)
	return nil
}
