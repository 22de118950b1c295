package core

import (
	"context"
	"time"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	// GetUserByEmail hace match exacto (case-sensitive).
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser retorna ErrConflict si el email ya existe.
	CreateUser(ctx context.Context, email, name string, now time.Time) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type ProviderRepository interface {
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProviderByID(ctx context.Context, id int64) (*Provider, error)
	GetProviderByName(ctx context.Context, name string) (*Provider, error)
}

type ConnectionRepository interface {
	// UpsertConnection es una única sentencia atómica sobre la clave
	// (user_id, provider_id, external_id). Deja status=active.
	UpsertConnection(ctx context.Context, in ConnectionUpsert, now time.Time) (*Connection, error)
	ListConnectionsByUser(ctx context.Context, userID int64) ([]Connection, error)
	ListConnections(ctx context.Context) ([]Connection, error)
	// GetConnection está scopeada al usuario: id ajeno => ErrNotFound.
	GetConnection(ctx context.Context, userID, id int64) (*Connection, error)
	GetConnectionByID(ctx context.Context, id int64) (*Connection, error)
	UpdateConnectionTokens(ctx context.Context, id int64, upd TokenUpdate, now time.Time) (*Connection, error)
	SetConnectionStatus(ctx context.Context, id int64, status string, now time.Time) error
	// DeleteConnection borra la conexión del usuario y sus mappings en una tx.
	DeleteConnection(ctx context.Context, userID, id int64) error
	CountConnectionsByStatus(ctx context.Context, status string) (int64, error)
}

type InternalAppRepository interface {
	ListActiveApps(ctx context.Context) ([]InternalApp, error)
	GetApp(ctx context.Context, id int64) (*InternalApp, error)
	// CreateApp retorna ErrConflict si el nombre ya existe.
	CreateApp(ctx context.Context, app InternalApp, now time.Time) (*InternalApp, error)
	UpdateApp(ctx context.Context, id int64, patch InternalAppPatch, now time.Time) (*InternalApp, error)
	SoftDeleteApp(ctx context.Context, id int64, now time.Time) error
	CountActiveApps(ctx context.Context) (int64, error)
}

type MappingRepository interface {
	// CreateMapping retorna ErrConflict si la terna ya existe.
	CreateMapping(ctx context.Context, providerID, appID, connectionID int64, now time.Time) (*AppMapping, error)
	ListMappings(ctx context.Context) ([]AppMapping, error)
	GetMapping(ctx context.Context, id int64) (*AppMapping, error)
	DeleteMapping(ctx context.Context, id int64) error
}

type AuditRepository interface {
	InsertEvent(ctx context.Context, e *AuthEvent) error
	// QueryEvents ordena de más nuevo a más viejo.
	QueryEvents(ctx context.Context, f AuditFilter) ([]AuthEvent, error)
	CountEvents(ctx context.Context, recentSince time.Time) ([]AuditCount, error)
	PurgeEvents(ctx context.Context, before time.Time) (int64, error)
}

type AdminRepository interface {
	// GetAdminPasswordHash retorna ErrNotFound si no hay password configurada.
	GetAdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string, now time.Time) error
}

// Repository agrupa todos los repos de un driver.
type Repository interface {
	UserRepository
	ProviderRepository
	ConnectionRepository
	InternalAppRepository
	MappingRepository
	AuditRepository
	AdminRepository

	Ping(ctx context.Context) error
	Close() error
}
