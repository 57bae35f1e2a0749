package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain"
)

var _ inventory.IdempotencyGuard = (*Idempotency)(nil)

// Idempotency reserva ids de solicitud con SETNX y vencimiento.
type Idempotency struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotency(client *goredis.Client, prefix string, ttl time.Duration) *Idempotency {
	return &Idempotency{client: client, prefix: prefix, ttl: ttl}
}

func (g *Idempotency) key(k string) string {
	return g.prefix + ":idem:" + k
}

// Acquire devuelve domain.ErrDuplicateRequest si la clave ya estaba reservada.
func (g *Idempotency) Acquire(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("clave de idempotencia requerida")
	}
	ok, err := g.client.SetNX(ctx, g.key(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	return nil
}

// Release libera la clave; se usa cuando el movimiento se abortó.
func (g *Idempotency) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
