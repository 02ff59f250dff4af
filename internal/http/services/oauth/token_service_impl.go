package oauth

import (
	"context"
	"errors"
	"time"

	jwtx "github.com/dropDatabas3/tomora/internal/jwt"
	"github.com/dropDatabas3/tomora/internal/metrics"
	"github.com/dropDatabas3/tomora/internal/oauth/clients"
	"github.com/dropDatabas3/tomora/internal/oauth/grants"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
	tokens "github.com/dropDatabas3/tomora/internal/security/token"
)

// TokenDeps contiene las dependencias del token service.
type TokenDeps struct {
	Clients    clients.Registry
	Issuer     *jwtx.Issuer
	Codes      grants.Ledger
	Refresh    grants.Ledger
	RefreshTTL time.Duration
}

type tokenService struct {
	deps TokenDeps
}

// NewTokenService crea el service del token endpoint.
func NewTokenService(deps TokenDeps) TokenService {
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = 365 * 24 * time.Hour
	}
	return &tokenService{deps: deps}
}

// Exchange implementa POST /token.
//
// La autenticación del cliente es incondicional y PRECEDE al dispatch por
// grant_type. El take del ledger es atómico: bajo dos canjes concurrentes
// del mismo código o refresh token, exactamente uno gana.
func (s *tokenService) Exchange(ctx context.Context, req ExchangeRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("oauth.token"),
		logger.GrantType(req.GrantType),
	)

	// Paso 1: autenticar cliente (tiempo constante)
	client, err := s.deps.Clients.Get(ctx, req.ClientID)
	if err != nil || !client.Authenticate(req.ClientSecret) {
		log.Warn("client authentication failed", logger.ClientID(req.ClientID))
		metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "invalid_client").Inc()
		return nil, ErrInvalidClient
	}

	// Paso 2: dispatch por grant_type, con take atómico del ledger
	var grant grants.Grant
	switch req.GrantType {
	case "authorization_code":
		if req.Code == "" {
			return nil, ErrInvalidGrant
		}
		grant, err = s.deps.Codes.TakeIfValid(ctx, req.Code)

	case "refresh_token":
		if req.RefreshToken == "" {
			return nil, ErrInvalidGrant
		}
		grant, err = s.deps.Refresh.TakeIfValid(ctx, req.RefreshToken)

	default:
		metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "unsupported").Inc()
		return nil, ErrUnsupportedGrantType
	}

	if err != nil {
		if errors.Is(err, grants.ErrGrantNotFound) {
			log.Debug("grant absent, expired or already consumed")
			metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "invalid_grant").Inc()
			return nil, ErrInvalidGrant
		}
		log.Error("grant ledger failed", logger.Err(err))
		metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "error").Inc()
		return nil, ErrServerError
	}

	// Paso 3: mint del access token + rotación del refresh token.
	// El refresh viejo ya fue consumido por el take: aunque esta respuesta
	// se pierda en tránsito, no puede replayarse.
	access, _, err := s.deps.Issuer.IssueAccess(grant.UserID, grant.Email)
	if err != nil {
		log.Error("failed to issue access token", logger.Err(err))
		metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "error").Inc()
		return nil, ErrServerError
	}

	newRefresh, err := tokens.GenerateRefreshToken()
	if err != nil {
		return nil, ErrServerError
	}
	now := time.Now().UTC()
	if err := s.deps.Refresh.Put(ctx, newRefresh, grants.Grant{
		UserID:    grant.UserID,
		Email:     grant.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.deps.RefreshTTL),
	}); err != nil {
		log.Error("failed to store refresh grant", logger.Err(err))
		metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "error").Inc()
		return nil, ErrServerError
	}

	log.Info("token exchanged", logger.UserID(grant.UserID))
	metrics.TokenExchangesTotal.WithLabelValues(req.GrantType, "ok").Inc()

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.deps.Issuer.AccessTTL().Seconds()),
	}, nil
}
