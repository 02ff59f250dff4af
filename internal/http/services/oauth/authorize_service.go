package oauth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/tomora/internal/oauth/clients"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
)

type authorizeService struct {
	clients clients.Registry
}

// NewAuthorizeService crea el service del authorization endpoint.
func NewAuthorizeService(reg clients.Registry) AuthorizeService {
	return &authorizeService{clients: reg}
}

// Validate aplica las validaciones en orden: response_type, client_id,
// presencia de state y redirect_uri. Cualquier violación es invalid_request.
func (s *authorizeService) Validate(ctx context.Context, req AuthorizeRequest) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize"))

	if req.ResponseType != "code" {
		log.Debug("unsupported response_type", logger.String("response_type", req.ResponseType))
		return fmt.Errorf("%w: response_type must be \"code\"", ErrInvalidRequest)
	}
	if _, err := s.clients.Get(ctx, req.ClientID); err != nil {
		log.Debug("unknown client", logger.ClientID(req.ClientID))
		return fmt.Errorf("%w: unknown client_id", ErrInvalidRequest)
	}
	if req.State == "" || req.RedirectURI == "" {
		return fmt.Errorf("%w: state and redirect_uri are required", ErrInvalidRequest)
	}
	return nil
}
