package grants

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// redisLedger implementa Ledger sobre Redis.
//
// El take atómico usa GETDEL: Redis garantiza que solo un cliente recibe el
// valor aunque dos exchanges lleguen a la vez. El TTL nativo de Redis borra
// los grants vencidos sin janitor propio.
type redisLedger struct {
	c      *rdb.Client
	prefix string
}

// NewRedis crea un ledger sobre Redis y verifica la conexión.
func NewRedis(cfg Config) (Ledger, error) {
	client := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("grants: redis ping failed: %w", err)
	}
	return &redisLedger{c: client, prefix: cfg.Prefix}, nil
}

func (l *redisLedger) key(k string) string {
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}

func (l *redisLedger) Put(ctx context.Context, key string, g Grant) error {
	ttl := time.Until(g.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return l.c.Set(ctx, l.key(key), b, ttl).Err()
}

func (l *redisLedger) TakeIfValid(ctx context.Context, key string) (Grant, error) {
	b, err := l.c.GetDel(ctx, l.key(key)).Bytes()
	if err == rdb.Nil {
		return Grant{}, ErrGrantNotFound
	}
	if err != nil {
		return Grant{}, err
	}

	var g Grant
	if err := json.Unmarshal(b, &g); err != nil {
		return Grant{}, ErrGrantNotFound
	}
	// El TTL de Redis ya debería haberlo borrado; el chequeo cubre clock skew.
	if g.Expired(time.Now()) {
		return Grant{}, ErrGrantNotFound
	}
	return g, nil
}

func (l *redisLedger) Invalidate(ctx context.Context, key string) error {
	return l.c.Del(ctx, l.key(key)).Err()
}
