// Package oauth contiene los controllers del flujo de account linking:
// authorization endpoint, login y token endpoint.
package oauth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	svc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// writeServiceError mapea errores de service a HTTPError para los endpoints
// que hablan nuestro formato (no el formato OAuth del token endpoint).
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		helpers.WriteError(w, helpers.ErrInvalidRequest.WithDetail(detailOf(err, svc.ErrInvalidRequest)))
	case errors.Is(err, svc.ErrUnauthorizedClient):
		helpers.WriteError(w, helpers.ErrUnauthorizedClient)
	case errors.Is(err, svc.ErrInvalidCredentials):
		helpers.WriteError(w, helpers.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrStoreUnavailable):
		helpers.WriteError(w, helpers.ErrStoreUnavailable)
	default:
		helpers.WriteError(w, helpers.ErrInternal)
	}
}

// detailOf extrae el detalle que el service agregó al sentinel al envolverlo.
func detailOf(err, sentinel error) string {
	full := err.Error()
	prefix := sentinel.Error() + ": "
	if len(full) > len(prefix) && full[:len(prefix)] == prefix {
		return full[len(prefix):]
	}
	return ""
}
