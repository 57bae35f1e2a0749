package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
)

var _ inventory.SequenceGenerator = (*Sequence)(nil)

// Sequence consecutivos con INCR. Un número tomado por una transacción abortada no se reutiliza.
type Sequence struct {
	client *goredis.Client
	prefix string
}

// NewSequence prefix separa las claves de cada despliegue (p. ej. "tiendas").
func NewSequence(client *goredis.Client, prefix string) *Sequence {
	return &Sequence{client: client, prefix: prefix}
}

func (s *Sequence) key(name string) string {
	return fmt.Sprintf("%s:seq:%s", s.prefix, name)
}

// Next incrementa y devuelve el consecutivo.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	n, err := s.client.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", name, err)
	}
	return n, nil
}

// Seed garantiza que el siguiente número sea mayor que last (p. ej. al migrar desde Postgres).
func (s *Sequence) Seed(ctx context.Context, name string, last int64) error {
	key := s.key(name)
	cur, err := s.client.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis get %s: %w", name, err)
	}
	if cur >= last {
		return nil
	}
	return s.client.Set(ctx, key, last, 0).Err()
}
