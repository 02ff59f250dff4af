package oauth

import (
	_ "embed"
	"net/http"

	svc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
)

//go:embed login.html
var loginPage []byte

// AuthorizeController maneja el authorization endpoint.
type AuthorizeController struct {
	service svc.AuthorizeService
}

// NewAuthorizeController crea el controller del authorization endpoint.
func NewAuthorizeController(s svc.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: s}
}

// Authorize maneja GET /auth: valida los query params y, si están bien,
// sirve la página de login. El estado del flujo (state, redirect_uri,
// client_id) viaja en la URL; el server no guarda nada en este paso.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.authorize"))

	q := r.URL.Query()
	req := svc.AuthorizeRequest{
		ResponseType: q.Get("response_type"),
		ClientID:     q.Get("client_id"),
		State:        q.Get("state"),
		RedirectURI:  q.Get("redirect_uri"),
	}

	if err := c.service.Validate(ctx, req); err != nil {
		log.Debug("authorize request rejected", logger.Err(err))
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(loginPage)
}
