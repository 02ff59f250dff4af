package oauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	svc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
)

// TokenController maneja el token endpoint OAuth2.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController crea el controller del token endpoint.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// oauthError es el formato de error RFC 6749 del token endpoint. A diferencia
// del resto de la API, acá el shape lo dicta el estándar.
type oauthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Token maneja POST /token. Acepta body JSON o form-urlencoded: la skill de
// Alexa manda form, los clientes propios mandan JSON.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req svc.ExchangeRequest
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "application/json"):
		var body struct {
			GrantType    string `json:"grant_type"`
			Code         string `json:"code"`
			RefreshToken string `json:"refresh_token"`
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			c.writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
			return
		}
		req = svc.ExchangeRequest(body)

	default:
		// form-urlencoded (y sin Content-Type, que algunos clientes omiten)
		if err := r.ParseForm(); err != nil {
			c.writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
			return
		}
		req = svc.ExchangeRequest{
			GrantType:    strings.TrimSpace(r.PostForm.Get("grant_type")),
			Code:         strings.TrimSpace(r.PostForm.Get("code")),
			RefreshToken: strings.TrimSpace(r.PostForm.Get("refresh_token")),
			ClientID:     strings.TrimSpace(r.PostForm.Get("client_id")),
			ClientSecret: r.PostForm.Get("client_secret"),
		}
	}

	log = log.With(logger.GrantType(req.GrantType))

	resp, err := c.service.Exchange(ctx, req)
	if err != nil {
		log.Debug("token exchange failed", logger.Err(err))
		c.writeExchangeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func (c *TokenController) writeExchangeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidClient):
		w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		c.writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
	case errors.Is(err, svc.ErrInvalidGrant):
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Grant is invalid, expired or already used")
	case errors.Is(err, svc.ErrUnsupportedGrantType):
		c.writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported grant_type")
	case errors.Is(err, svc.ErrInvalidRequest):
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed request")
	default:
		c.writeOAuthError(w, http.StatusInternalServerError, "server_error", "Internal error")
	}
}

func (c *TokenController) writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oauthError{Error: code, ErrorDescription: description})
}
