// Package clients modela los clientes OAuth registrados.
//
// Hoy hay exactamente un cliente (la skill de Alexa) cargado desde config,
// pero la interfaz queda abierta a un registro multi-cliente sin tocar a
// los consumidores.
package clients

import (
	"context"
	"crypto/subtle"
	"errors"
)

// Client es un cliente OAuth registrado.
type Client struct {
	ClientID string
	Secret   string
}

var ErrClientNotFound = errors.New("clients: client not found")

// Registry resuelve clientes por client_id.
type Registry interface {
	Get(ctx context.Context, clientID string) (*Client, error)
}

// Static es un Registry de una sola fila, armado desde config.
type Static struct{ c Client }

func NewStatic(clientID, secret string) *Static {
	return &Static{c: Client{ClientID: clientID, Secret: secret}}
}

func (s *Static) Get(_ context.Context, clientID string) (*Client, error) {
	if clientID == "" || clientID != s.c.ClientID {
		return nil, ErrClientNotFound
	}
	cp := s.c
	return &cp, nil
}

// Authenticate valida el secret en tiempo constante.
func (c *Client) Authenticate(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}
