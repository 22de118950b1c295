// Package connections contiene los DTOs de /api/connections.
package connections

import (
	"time"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

// Connection es la vista pública de una conexión. Nunca lleva tokens.
type Connection struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	Provider        string     `json:"provider"`
	ProviderID      int64      `json:"providerId"`
	ExternalID      string     `json:"externalId"`
	Status          string     `json:"status"`
	Scopes          []string   `json:"scopes"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	HasRefreshToken bool       `json:"hasRefreshToken"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func FromCore(c core.Connection) Connection {
	scopes := c.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return Connection{
		ID:              c.ID,
		UserID:          c.UserID,
		Provider:        c.ProviderName,
		ProviderID:      c.ProviderID,
		ExternalID:      c.ExternalID,
		Status:          c.Status,
		Scopes:          scopes,
		ExpiresAt:       c.ExpiresAt,
		HasRefreshToken: c.RefreshToken != "",
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromCoreList(cs []core.Connection) []Connection {
	out := make([]Connection, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromCore(c))
	}
	return out
}

type ListResponse struct {
	Connections []Connection `json:"connections"`
}

type ItemResponse struct {
	Connection Connection `json:"connection"`
}

// ActionResponse es la respuesta de refresh y revoke.
type ActionResponse struct {
	Connection Connection `json:"connection"`
	Message    string     `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
