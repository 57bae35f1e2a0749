package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain"
)

var (
	_ inventory.SequenceGenerator = (*Sequence)(nil)
	_ inventory.IdempotencyGuard  = (*Idempotency)(nil)
)

// Sequence consecutivos en memoria (no transaccionales: abortar deja huecos).
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]int64)}
}

func (s *Sequence) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}

// Idempotency claves de solicitud en memoria con vencimiento; Acquire purga las vencidas.
type Idempotency struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time
	now  func() time.Time
}

// NewIdempotency ttl <= 0 significa sin vencimiento.
func NewIdempotency(ttl time.Duration) *Idempotency {
	return &Idempotency{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

func (g *Idempotency) Acquire(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for k, exp := range g.keys {
		if !exp.IsZero() && !now.Before(exp) {
			delete(g.keys, k)
		}
	}
	if _, ok := g.keys[key]; ok {
		return domain.ErrDuplicateRequest
	}
	var exp time.Time
	if g.ttl > 0 {
		exp = now.Add(g.ttl)
	}
	g.keys[key] = exp
	return nil
}

func (g *Idempotency) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
