package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	jwtx "github.com/dropDatabas3/tomora/internal/jwt"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

// RequireAuth valida Authorization: Bearer <JWT> y resuelve la identidad.
//
// El token es autocontenido, pero el usuario se re-resuelve contra el store
// para rechazar tokens de cuentas ya borradas. Expirado y firma inválida se
// reportan con códigos distintos para que el cliente sepa si refrescar o
// re-autenticar.
func RequireAuth(issuer *jwtx.Issuer, repo core.Repository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				helpers.WriteError(w, helpers.ErrMissingToken)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])
			if raw == "" {
				helpers.WriteError(w, helpers.ErrMissingToken)
				return
			}

			claims, err := issuer.VerifyAccess(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				if errors.Is(err, jwtx.ErrTokenExpired) {
					helpers.WriteError(w, helpers.ErrTokenExpired)
				} else {
					helpers.WriteError(w, helpers.ErrInvalidToken)
				}
				return
			}

			user, err := repo.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					helpers.WriteError(w, helpers.ErrUserNotFound)
					return
				}
				logger.From(r.Context()).Error("user lookup failed", logger.Err(err))
				helpers.WriteError(w, helpers.ErrStoreUnavailable)
				return
			}

			ctx := WithAuthUser(r.Context(), AuthUser{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
