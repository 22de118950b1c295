package middlewares

import (
	"context"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/authhub/internal/http/errors"
	"github.com/dropDatabas3/authhub/internal/jwt"
	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.SessionClaims, error)
}

type AdminVerifier interface {
	VerifyAdmin(ctx context.Context, token string) (*jwt.AdminClaims, error)
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireSession exige un session token válido e inyecta sus claims.
func RequireSession(v SessionVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			claims, err := v.Verify(r.Context(), tok)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			ctx := WithSession(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin exige un token emitido por /api/admin/verify.
// Un session token de usuario no alcanza.
func RequireAdmin(v AdminVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			claims, err := v.VerifyAdmin(r.Context(), tok)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), claims)))
		})
	}
}
