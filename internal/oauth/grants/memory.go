package grants

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryLedger implementa Ledger in-process sobre go-cache.
//
// go-cache maneja TTL y limpieza periódica, pero su Get+Delete no es atómico:
// el mutex propio hace de TakeIfValid una sola sección crítica. Estado de
// vida del proceso, se pierde en un restart (limitación aceptada del modo
// memory; para producción usar el backend redis).
type memoryLedger struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemory crea un ledger en memoria.
func NewMemory() Ledger {
	return &memoryLedger{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (l *memoryLedger) Put(_ context.Context, key string, g Grant) error {
	ttl := time.Until(g.ExpiresAt)
	if ttl <= 0 {
		return nil // ya nació vencido, no hay nada que guardar
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Set(key, g, ttl)
	return nil
}

func (l *memoryLedger) TakeIfValid(_ context.Context, key string) (Grant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.c.Get(key)
	if !ok {
		return Grant{}, ErrGrantNotFound
	}
	// Consumido: exactamente un caller puede llegar acá por key.
	l.c.Delete(key)

	g, ok := v.(Grant)
	if !ok || g.Expired(time.Now()) {
		return Grant{}, ErrGrantNotFound
	}
	return g, nil
}

func (l *memoryLedger) Invalidate(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Delete(key)
	return nil
}
