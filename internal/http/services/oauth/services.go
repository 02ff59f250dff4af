// Package oauth contiene los services del flujo de autorización OAuth2.
package oauth

import (
	"context"
	"errors"
)

// AuthorizeService valida requests del authorization endpoint (GET /auth).
// Este paso es solo un gate más UI: no genera estado propio.
type AuthorizeService interface {
	Validate(ctx context.Context, req AuthorizeRequest) error
}

// LoginService autentica credenciales y emite el authorization code.
type LoginService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

// TokenService canjea un authorization code o refresh token por un par
// access/refresh nuevo.
type TokenService interface {
	Exchange(ctx context.Context, req ExchangeRequest) (*TokenResponse, error)
}

// AuthorizeRequest son los query params del authorization endpoint.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	State        string
	RedirectURI  string
}

// LoginRequest es el body de POST /auth/login.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri"`
	ClientID    string `json:"client_id"`
}

// LoginResult es el resultado de un login exitoso.
type LoginResult struct {
	RedirectURL string
}

// ExchangeRequest son los parámetros de POST /token.
type ExchangeRequest struct {
	GrantType    string
	Code         string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// TokenResponse es la respuesta estándar OAuth2 del token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Errores de los services. Los controllers los mapean a HTTP.
var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrUnauthorizedClient   = errors.New("unauthorized_client")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrStoreUnavailable     = errors.New("store_unavailable")
	ErrServerError          = errors.New("server_error")
)
