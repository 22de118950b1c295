package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/authhub/internal/audit"
	"github.com/dropDatabas3/authhub/internal/http/helpers"
)

// WithClientInfo deja IP y User-Agent en el contexto para los eventos de auditoría.
// Va después de middleware.RealIP.
func WithClientInfo() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := audit.WithClient(r.Context(), helpers.ClientIP(r), r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
