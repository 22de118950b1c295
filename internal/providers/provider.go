// Package providers define el adapter de un identity provider OAuth2 externo.
// El Reconciler solo depende de Provider; cada implementación (google, ...)
// se registra en un Registry al arrancar.
package providers

import (
	"context"
	"errors"
	"time"
)

// Provider encapsula el protocolo authorization-code contra un IdP.
type Provider interface {
	// Name es la clave del provider ("google"); coincide con providers.name en la base.
	Name() string

	// ConsentURL arma la URL de consentimiento para el scope estático configurado,
	// pidiendo acceso offline y forzando re-consentimiento. Sin efectos externos.
	ConsentURL(state string) string

	// Exchange canjea el authorization code por tokens.
	Exchange(ctx context.Context, code string) (*TokenSet, error)

	// FetchIdentity obtiene el perfil con el access token.
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)

	// Refresh conserva el refresh token original si el IdP no emite uno nuevo.
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)

	// Revoke es best-effort: el error se reporta y no se reintenta.
	Revoke(ctx context.Context, token string) error
}

// TokenSet es el resultado de un canje o refresh. ExpiresAt se calcula al recibir.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scopes       []string
	ExpiresIn    int64
	ExpiresAt    time.Time
}

// ExpiresAtPtr devuelve nil si el IdP no informó expiración.
func (t *TokenSet) ExpiresAtPtr() *time.Time {
	if t == nil || t.ExpiresAt.IsZero() {
		return nil
	}
	e := t.ExpiresAt
	return &e
}

// Identity es el perfil mínimo que exige el hub para crear/matchear un usuario.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Picture    string
}

var (
	ErrTokenExchange      = errors.New("provider: token exchange failed")
	ErrIncompleteIdentity = errors.New("provider: identity is missing id, email or name")
	// ErrRefreshRejected es permanente (refresh token revocado o inválido upstream).
	ErrRefreshRejected = errors.New("provider: refresh token rejected")
	ErrUpstream        = errors.New("provider: upstream request failed")
	ErrNotRegistered   = errors.New("provider: not registered")
)
