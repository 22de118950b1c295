// Package auth contiene los DTOs del login OAuth y del perfil.
package auth

import (
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

// ConsentResponse es la respuesta de GET /api/auth/{provider}.
type ConsentResponse struct {
	AuthURL string `json:"authUrl"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MeUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type MeConnection struct {
	ID        int64     `json:"id"`
	Provider  string    `json:"provider"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MeResponse es la respuesta de GET /api/auth/me.
type MeResponse struct {
	User        MeUser         `json:"user"`
	Connections []MeConnection `json:"connections"`
}

func NewMeResponse(u *core.User, conns []core.Connection) MeResponse {
	resp := MeResponse{
		User:        MeUser{ID: u.ID, Email: u.Email, Name: u.Name},
		Connections: make([]MeConnection, 0, len(conns)),
	}
	for _, c := range conns {
		resp.Connections = append(resp.Connections, MeConnection{
			ID:        c.ID,
			Provider:  c.ProviderName,
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}

// Provider es una entrada del catálogo público.
type Provider struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	AuthURL     string   `json:"authUrl"`
	TokenURL    string   `json:"tokenUrl"`
	Scopes      []string `json:"scopes"`
	Enabled     bool     `json:"enabled"`
}

func ProviderFromCore(p core.Provider) Provider {
	scopes := p.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return Provider{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		AuthURL:     p.OAuthConfig.AuthURL,
		TokenURL:    p.OAuthConfig.TokenURL,
		Scopes:      scopes,
		Enabled:     p.Enabled,
	}
}

type ProvidersResponse struct {
	Providers []Provider `json:"providers"`
}

type ProviderResponse struct {
	Provider Provider `json:"provider"`
}
