// Package grants implementa los ledgers de authorization codes y refresh
// tokens: estado transitorio, con TTL, de un solo uso.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción; sobrevive restarts)
package grants

import (
	"context"
	"errors"
	"time"
)

// Grant ata un código o refresh token al contexto bajo el que fue emitido.
// ClientID y RedirectURI solo aplican a authorization codes.
type Grant struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ClientID    string    `json:"client_id,omitempty"`
	RedirectURI string    `json:"redirect_uri,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reporta si el grant ya venció.
func (g Grant) Expired(now time.Time) bool { return now.After(g.ExpiresAt) }

// Ledger es el contrato de un ledger de grants.
//
// TakeIfValid es la única lectura y es destructiva: leer y borrar son UN paso
// atómico, de modo que un código o refresh token nunca pueda canjearse dos
// veces, ni siquiera bajo dos exchanges concurrentes. Un grant vencido se
// borra y se reporta ausente.
type Ledger interface {
	Put(ctx context.Context, key string, g Grant) error
	TakeIfValid(ctx context.Context, key string) (Grant, error)
	Invalidate(ctx context.Context, key string) error
}

// ErrGrantNotFound: el key no existe, ya fue consumido, o venció.
var ErrGrantNotFound = errors.New("grants: grant not found")

// Config para construir un ledger.
type Config struct {
	Kind   string // "memory" | "redis"
	Addr   string // redis
	DB     int    // redis
	Prefix string // namespace de keys (ej: "tomora:code", "tomora:rt")
}

// New crea un ledger según la configuración.
func New(cfg Config) (Ledger, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(), nil
	default:
		return NewMemory(), nil
	}
}
