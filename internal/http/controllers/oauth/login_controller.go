package oauth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	svc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
)

// LoginController maneja el endpoint de login del flujo de autorización.
type LoginController struct {
	service svc.LoginService
}

// NewLoginController crea el controller de login.
func NewLoginController(s svc.LoginService) *LoginController {
	return &LoginController{service: s}
}

// loginResponse es lo que espera el script de la página de login.
type loginResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl"`
}

// Login maneja POST /auth/login.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.login"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req svc.LoginRequest
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			helpers.WriteError(w, helpers.ErrInvalidJSON)
			return
		}

	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			helpers.WriteError(w, helpers.ErrInvalidRequest.WithDetail("invalid form"))
			return
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
		req.State = r.PostForm.Get("state")
		req.RedirectURI = r.PostForm.Get("redirect_uri")
		req.ClientID = r.PostForm.Get("client_id")

	default:
		helpers.WriteError(w, helpers.ErrInvalidRequest.WithDetail("unsupported content type"))
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		RedirectURL: result.RedirectURL,
	})
}
