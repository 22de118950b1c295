// Package google implements the Google OAuth2 provider on top of golang.org/x/oauth2.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/dropDatabas3/authhub/internal/providers"
)

const (
	ProviderName = "google"

	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	DefaultRevokeURL   = "https://oauth2.googleapis.com/revoke"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config holds the static client configuration. Empty endpoints fall back to Google's
// (googleoauth.Endpoint for auth and token).
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	RevokeURL   string

	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

// Provider implements providers.Provider for Google.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	revokeURL   string
	client      *http.Client
	now         func() time.Time
}

var _ providers.Provider = (*Provider)(nil)

// New validates cfg and builds the provider.
func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google: client_id and client_secret required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("google: redirect_url required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   orDefault(cfg.AuthURL, googleoauth.Endpoint.AuthURL),
				TokenURL:  orDefault(cfg.TokenURL, googleoauth.Endpoint.TokenURL),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: orDefault(cfg.UserInfoURL, DefaultUserInfoURL),
		revokeURL:   orDefault(cfg.RevokeURL, DefaultRevokeURL),
		client:      client,
		now:         time.Now,
	}, nil
}

// Factory adapts New to providers.Factory.
func Factory(cfg Config) providers.Factory {
	return func() (providers.Provider, error) { return New(cfg) }
}

func (p *Provider) Name() string { return ProviderName }

// ConsentURL requests offline access and forces the consent screen so a
// refresh token is issued on every authorization.
func (p *Provider) ConsentURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// Exchange trades the authorization code. Neither the code nor the tokens end up in errors.
func (p *Provider) Exchange(ctx context.Context, code string) (*providers.TokenSet, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", providers.ErrTokenExchange)
	}
	tok, err := p.oauth.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", providers.ErrTokenExchange, describe(err))
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", providers.ErrTokenExchange)
	}
	return p.toTokenSet(tok, ""), nil
}

// Refresh keeps refreshToken when the response omits a new one.
// 400/401 and invalid_grant are permanent (ErrRefreshRejected).
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*providers.TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: empty refresh token", providers.ErrRefreshRejected)
	}
	src := p.oauth.TokenSource(p.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		if isPermanentRefreshError(err) {
			return nil, fmt.Errorf("%w: %s", providers.ErrRefreshRejected, describe(err))
		}
		return nil, fmt.Errorf("%w: refresh: %s", providers.ErrUpstream, describe(err))
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: refresh returned no access token", providers.ErrUpstream)
	}
	return p.toTokenSet(tok, refreshToken), nil
}

type userInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *Provider) FetchIdentity(ctx context.Context, accessToken string) (*providers.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build userinfo request: %v", providers.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo: %v", providers.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: userinfo status %d", providers.ErrUpstream, resp.StatusCode)
	}

	var ui userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&ui); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", providers.ErrUpstream, err)
	}
	if ui.ID == "" || ui.Email == "" || ui.Name == "" {
		return nil, providers.ErrIncompleteIdentity
	}
	return &providers.Identity{
		ExternalID: ui.ID,
		Email:      ui.Email,
		Name:       ui.Name,
		Picture:    ui.Picture,
	}, nil
}

func (p *Provider) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build revoke request: %v", providers.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: revoke: %v", providers.ErrUpstream, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: revoke status %d", providers.ErrUpstream, resp.StatusCode)
	}
	return nil
}

func (p *Provider) toTokenSet(tok *oauth2.Token, fallbackRefresh string) *providers.TokenSet {
	now := p.now()
	ts := &providers.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresIn:    tok.ExpiresIn,
	}
	if ts.RefreshToken == "" {
		ts.RefreshToken = fallbackRefresh
	}
	switch {
	case ts.ExpiresIn > 0:
		ts.ExpiresAt = now.Add(time.Duration(ts.ExpiresIn) * time.Second).UTC()
	case !tok.Expiry.IsZero():
		ts.ExpiresAt = tok.Expiry.UTC()
		ts.ExpiresIn = int64(tok.Expiry.Sub(now).Seconds())
	}
	if s, ok := tok.Extra("scope").(string); ok && s != "" {
		ts.Scopes = strings.Fields(s)
	} else {
		ts.Scopes = append([]string(nil), p.oauth.Scopes...)
	}
	return ts
}

func isPermanentRefreshError(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" || strings.Contains(string(re.Body), "invalid_grant") {
		return true
	}
	return re.Response != nil &&
		(re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized)
}

// describe summarizes a token endpoint error without echoing request data.
func describe(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		if re.ErrorCode != "" {
			return fmt.Sprintf("status %d: %s", status, re.ErrorCode)
		}
		return fmt.Sprintf("status %d", status)
	}
	return err.Error()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
