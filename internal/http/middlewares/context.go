package middlewares

import "context"

type ctxKey string

const (
	// ctxUserKey guarda el usuario autenticado resuelto por RequireAuth
	ctxUserKey ctxKey = "auth_user"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// AuthUser es la identidad resuelta que viaja con el request.
type AuthUser struct {
	ID    string
	Email string
	Name  string
}

// WithAuthUser inyecta el usuario autenticado en el contexto.
func WithAuthUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// GetAuthUser obtiene el usuario autenticado del contexto.
// El bool es false si RequireAuth no corrió sobre esta ruta.
func GetAuthUser(ctx context.Context) (AuthUser, bool) {
	if v := ctx.Value(ctxUserKey); v != nil {
		if u, ok := v.(AuthUser); ok {
			return u, true
		}
	}
	return AuthUser{}, false
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
