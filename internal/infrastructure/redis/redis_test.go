package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/redis"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSequence_NumerosConsecutivosPorNombre(t *testing.T) {
	_, client := newClient(t)
	seq := redis.NewSequence(client, "test")
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := seq.Next(ctx, "sale")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := seq.Next(ctx, "transfer")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "cada nombre tiene su propio contador")
}

func TestSequence_SeedNoRetrocede(t *testing.T) {
	_, client := newClient(t)
	seq := redis.NewSequence(client, "test")
	ctx := context.Background()

	require.NoError(t, seq.Seed(ctx, "sale", 41))
	n, err := seq.Next(ctx, "sale")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	require.NoError(t, seq.Seed(ctx, "sale", 10))
	n, err = seq.Next(ctx, "sale")
	require.NoError(t, err)
	assert.Equal(t, int64(43), n)
}

func TestIdempotency_RechazaDuplicadosYLibera(t *testing.T) {
	mr, client := newClient(t)
	guard := redis.NewIdempotency(client, "test", time.Minute)
	ctx := context.Background()

	require.NoError(t, guard.Acquire(ctx, "sale:req-1"))
	assert.ErrorIs(t, guard.Acquire(ctx, "sale:req-1"), domain.ErrDuplicateRequest)

	require.NoError(t, guard.Release(ctx, "sale:req-1"))
	require.NoError(t, guard.Acquire(ctx, "sale:req-1"))

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, guard.Acquire(ctx, "sale:req-1"), "la clave vence con el TTL")
}
