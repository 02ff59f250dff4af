package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/tomora/internal/metrics"
	"github.com/dropDatabas3/tomora/internal/oauth/clients"
	"github.com/dropDatabas3/tomora/internal/oauth/grants"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/security/password"
	tokens "github.com/dropDatabas3/tomora/internal/security/token"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

// LoginDeps contiene las dependencias del login service.
type LoginDeps struct {
	Repo    core.Repository
	Clients clients.Registry
	Codes   grants.Ledger
	CodeTTL time.Duration
}

type loginService struct {
	deps LoginDeps
}

// NewLoginService crea el service de login + emisión de código.
func NewLoginService(deps LoginDeps) LoginService {
	if deps.CodeTTL <= 0 {
		deps.CodeTTL = 5 * time.Minute
	}
	return &loginService{deps: deps}
}

// Login autentica y, si las credenciales matchean, guarda un Authorization
// Grant de un solo uso y devuelve la redirect URL con code y state.
// El grant queda almacenado ANTES de devolver la URL: para el caller, emitir
// el código y poder canjearlo son una sola unidad.
func (s *loginService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.login"))

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.ClientID = strings.TrimSpace(req.ClientID)

	if req.Email == "" || req.Password == "" || req.State == "" || req.RedirectURI == "" {
		return nil, fmt.Errorf("%w: email, password, state and redirect_uri are required", ErrInvalidRequest)
	}
	if _, err := url.ParseRequestURI(req.RedirectURI); err != nil {
		return nil, fmt.Errorf("%w: redirect_uri is not a valid URL", ErrInvalidRequest)
	}

	// Paso 1: cliente registrado
	if _, err := s.deps.Clients.Get(ctx, req.ClientID); err != nil {
		log.Warn("login for unknown client", logger.ClientID(req.ClientID))
		metrics.LoginsTotal.WithLabelValues("unauthorized_client").Inc()
		return nil, ErrUnauthorizedClient
	}

	// Paso 2: resolver usuario
	user, err := s.deps.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("user not found")
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, ErrStoreUnavailable
	}

	// Paso 3: verificar password (argon2id, comparación en tiempo constante)
	if !password.Verify(req.Password, user.PasswordHash) {
		log.Debug("password mismatch", logger.UserID(user.ID))
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	// Paso 4: emitir y guardar el Authorization Grant
	code, err := tokens.GenerateCode()
	if err != nil {
		return nil, ErrServerError
	}
	now := time.Now().UTC()
	grant := grants.Grant{
		UserID:      user.ID,
		Email:       user.Email,
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.deps.CodeTTL),
	}
	if err := s.deps.Codes.Put(ctx, code, grant); err != nil {
		log.Error("failed to store authorization grant", logger.Err(err))
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, ErrServerError
	}

	// Paso 5: armar la redirect URL (code + state)
	u, err := url.Parse(req.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect_uri is not a valid URL", ErrInvalidRequest)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", req.State)
	u.RawQuery = q.Encode()

	log.Info("authorization code issued",
		logger.UserID(user.ID),
		logger.ClientID(req.ClientID),
	)
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return &LoginResult{RedirectURL: u.String()}, nil
}
