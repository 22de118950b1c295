package middlewares

import (
	"context"

	"github.com/dropDatabas3/authhub/internal/jwt"
)

type ctxKey string

const (
	ctxSessionKey   ctxKey = "session"
	ctxAdminKey     ctxKey = "admin"
	ctxRequestIDKey ctxKey = "request_id"
)

func WithSession(ctx context.Context, c *jwt.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxSessionKey, c)
}

func withAdmin(ctx context.Context, c *jwt.AdminClaims) context.Context {
	return context.WithValue(ctx, ctxAdminKey, c)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetSession retorna nil si RequireSession no se aplicó.
func GetSession(ctx context.Context) *jwt.SessionClaims {
	c, _ := ctx.Value(ctxSessionKey).(*jwt.SessionClaims)
	return c
}

// GetUserID retorna 0 sin sesión.
func GetUserID(ctx context.Context) int64 {
	if c := GetSession(ctx); c != nil {
		return c.UserID
	}
	return 0
}

func IsAdmin(ctx context.Context) bool {
	c, _ := ctx.Value(ctxAdminKey).(*jwt.AdminClaims)
	return c != nil
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
