// Package memory almacenamiento transaccional en memoria: pruebas y APP_STORAGE=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]*entity.Product
	stores     map[string]*entity.Store
	shops      map[string]*entity.Shop
	stock      map[string]*entity.LocationInventory
	activities []*entity.Activity
	transfers  map[string]*entity.Transfer
	sales      map[string]*entity.Sale
	invoices   map[string]*entity.SupplierInvoice
	placements map[string]*entity.Placement
	users      map[string]*entity.User
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		stores:     make(map[string]*entity.Store),
		shops:      make(map[string]*entity.Shop),
		stock:      make(map[string]*entity.LocationInventory),
		transfers:  make(map[string]*entity.Transfer),
		sales:      make(map[string]*entity.Sale),
		invoices:   make(map[string]*entity.SupplierInvoice),
		placements: make(map[string]*entity.Placement),
		users:      make(map[string]*entity.User),
	}
}

// clone copia profunda del estado; una transacción trabaja sobre la copia y solo la publica al confirmar.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range s.stores {
		st := *v
		c.stores[k] = &st
	}
	for k, v := range s.shops {
		sh := *v
		c.shops[k] = &sh
	}
	for k, v := range s.stock {
		c.stock[k] = v.Clone()
	}
	c.activities = make([]*entity.Activity, len(s.activities))
	copy(c.activities, s.activities) // solo anexado: los elementos no se modifican
	for k, v := range s.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range s.invoices {
		c.invoices[k] = cloneInvoice(v)
	}
	for k, v := range s.placements {
		c.placements[k] = clonePlacement(v)
	}
	for k, v := range s.users {
		c.users[k] = cloneUser(v)
	}
	return c
}

// Store base de datos en memoria. Las escrituras se serializan (un escritor a la vez, dentro o
// fuera de transacción) y cada transacción confirma todo o nada.
// Dentro de Run no se deben usar los repositorios de Repos() para escribir.
type Store struct {
	mu     sync.RWMutex
	data   *state
	writer chan struct{}
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newState(), writer: make(chan struct{}, 1)}
}

// Run ejecuta fn sobre una copia del estado. Si fn falla o el contexto vence, la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.writer }()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, reposFor(s, work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// Repos repositorios fuera de transacción (lecturas y altas de catálogo).
func (s *Store) Repos() inventory.TxRepos {
	return reposFor(s, nil)
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: db{store: s}}
}

func reposFor(s *Store, tx *state) inventory.TxRepos {
	d := db{store: s, tx: tx}
	return inventory.TxRepos{
		Products:   &ProductRepository{db: d},
		Locations:  &LocationRepository{db: d},
		Stock:      &LocationInventoryRepository{db: d},
		Activities: &ActivityRepository{db: d},
		Transfers:  &TransferRepository{db: d},
		Sales:      &SaleRepository{db: d},
		Invoices:   &InvoiceRepository{db: d},
		Placements: &PlacementRepository{db: d},
	}
}

// db resuelve sobre qué estado opera un repositorio: la copia de la transacción o el estado publicado.
type db struct {
	store *Store
	tx    *state
}

func (d db) read(fn func(st *state)) {
	if d.tx != nil {
		fn(d.tx)
		return
	}
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	fn(d.store.data)
}

// write fuera de transacción también ocupa el turno de escritor: espera a que la transacción
// abierta confirme y escribe sobre el estado ya publicado.
func (d db) write(fn func(st *state)) {
	if d.tx != nil {
		fn(d.tx)
		return
	}
	d.store.writer <- struct{}{}
	defer func() { <-d.store.writer }()
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	fn(d.store.data)
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.ShopIDs = append([]string(nil), u.ShopIDs...)
	return &c
}

func cloneManifest(m entity.Manifest) entity.Manifest {
	if m == nil {
		return nil
	}
	return append(entity.Manifest(nil), m...)
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.Items = make([]entity.TransferItem, len(t.Items))
	for i, it := range t.Items {
		it.Manifest = cloneManifest(it.Manifest)
		c.Items[i] = it
	}
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = make([]entity.SaleItem, len(s.Items))
	for i, it := range s.Items {
		it.Manifest = cloneManifest(it.Manifest)
		c.Items[i] = it
	}
	return &c
}

func cloneInvoice(inv *entity.SupplierInvoice) *entity.SupplierInvoice {
	c := *inv
	c.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &c
}

func clonePlacement(p *entity.Placement) *entity.Placement {
	c := *p
	c.Items = append([]entity.PlacementItem(nil), p.Items...)
	return &c
}

func cloneActivity(a *entity.Activity) *entity.Activity {
	c := *a
	if a.Counterparty != nil {
		cp := *a.Counterparty
		c.Counterparty = &cp
	}
	return &c
}
