package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

func TestRun_EscrituraFueraDeTransaccionNoSePierde(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
			close(started)
			<-release
			return repos.Products.Create(ctx, &entity.Product{ID: "p-tx", SKU: "TX"})
		})
	}()
	<-started

	createDone := make(chan error, 1)
	go func() {
		createDone <- s.Repos().Products.Create(ctx, &entity.Product{ID: "p-x", SKU: "X"})
	}()

	// la escritura espera a que la transacción abierta confirme
	select {
	case <-createDone:
		t.Fatal("la escritura no esperó a la transacción abierta")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-txDone)
	require.NoError(t, <-createDone)

	for _, id := range []string{"p-tx", "p-x"} {
		p, err := s.Repos().Products.GetByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, p, "producto %s", id)
	}
}

func TestRun_ErrorDescartaLaCopia(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("falla")

	err := s.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		require.NoError(t, repos.Locations.CreateStore(ctx, &entity.Store{ID: "store-1", Name: "Bodega"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	ok, err := s.Repos().Locations.Exists(ctx, entity.StoreRef("store-1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotency_PurgaClavesVencidas(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	g := NewIdempotency(time.Minute)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, "a"))
	require.NoError(t, g.Acquire(ctx, "b"))
	assert.ErrorIs(t, g.Acquire(ctx, "a"), domain.ErrDuplicateRequest)

	now = now.Add(2 * time.Minute)
	require.NoError(t, g.Acquire(ctx, "c"))
	assert.Len(t, g.keys, 1)

	// vencida: se puede volver a usar
	require.NoError(t, g.Acquire(ctx, "a"))
	assert.Len(t, g.keys, 2)
}
