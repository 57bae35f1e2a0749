package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
)

var _ inventory.SequenceGenerator = (*Sequence)(nil)

// Sequence consecutivos por nombre en la tabla sequences (respaldo cuando no hay Redis).
// Usa el pool y no la tx del movimiento: un número consumido por una tx abortada queda como hueco.
type Sequence struct {
	q Querier
}

func NewSequence(q Querier) *Sequence {
	return &Sequence{q: q}
}

func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return n, nil
}

// Last último valor emitido (0 si nunca se usó); sirve para sembrar el contador de Redis.
func (s *Sequence) Last(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.q.QueryRow(ctx, `SELECT COALESCE(MAX(value), 0) FROM sequences WHERE name = $1`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("last sequence %s: %w", name, err)
	}
	return n, nil
}
