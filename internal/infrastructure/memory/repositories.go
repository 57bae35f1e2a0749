package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepository)(nil)
	_ repository.LocationRepository          = (*LocationRepository)(nil)
	_ repository.LocationInventoryRepository = (*LocationInventoryRepository)(nil)
	_ repository.ActivityRepository          = (*ActivityRepository)(nil)
	_ repository.TransferRepository          = (*TransferRepository)(nil)
	_ repository.SaleRepository              = (*SaleRepository)(nil)
	_ repository.InvoiceRepository           = (*InvoiceRepository)(nil)
	_ repository.PlacementRepository         = (*PlacementRepository)(nil)
	_ repository.UserRepository              = (*UserRepository)(nil)
)

// Todos los repositorios devuelven copias: el llamador nunca comparte memoria con el estado.

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ProductRepository catálogo en memoria.
type ProductRepository struct{ db db }

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.products[p.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				err = domain.ErrDuplicate
				return
			}
		}
		st.products[p.ID] = cloneProduct(p)
	})
	return err
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
	})
	return out, nil
}

func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				out = cloneProduct(p)
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.db.read(func(st *state) {
		for _, p := range st.products {
			out = append(out, cloneProduct(p))
		}
	})
	slices.SortFunc(out, func(a, b *entity.Product) int { return cmp.Compare(a.Name, b.Name) })
	return page(out, limit, offset), nil
}

// LocationRepository almacenes y tiendas en memoria.
type LocationRepository struct{ db db }

func (r *LocationRepository) CreateStore(_ context.Context, s *entity.Store) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.stores[s.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		c := *s
		st.stores[s.ID] = &c
	})
	return err
}

func (r *LocationRepository) CreateShop(_ context.Context, s *entity.Shop) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.shops[s.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		c := *s
		st.shops[s.ID] = &c
	})
	return err
}

func (r *LocationRepository) GetStore(_ context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	r.db.read(func(st *state) {
		if s, ok := st.stores[id]; ok {
			c := *s
			out = &c
		}
	})
	return out, nil
}

func (r *LocationRepository) GetShop(_ context.Context, id string) (*entity.Shop, error) {
	var out *entity.Shop
	r.db.read(func(st *state) {
		if s, ok := st.shops[id]; ok {
			c := *s
			out = &c
		}
	})
	return out, nil
}

func (r *LocationRepository) ListStores(_ context.Context, limit, offset int) ([]*entity.Store, error) {
	var out []*entity.Store
	r.db.read(func(st *state) {
		for _, s := range st.stores {
			c := *s
			out = append(out, &c)
		}
	})
	slices.SortFunc(out, func(a, b *entity.Store) int { return cmp.Compare(a.Name, b.Name) })
	return page(out, limit, offset), nil
}

func (r *LocationRepository) ListShops(_ context.Context, limit, offset int) ([]*entity.Shop, error) {
	var out []*entity.Shop
	r.db.read(func(st *state) {
		for _, s := range st.shops {
			c := *s
			out = append(out, &c)
		}
	})
	slices.SortFunc(out, func(a, b *entity.Shop) int { return cmp.Compare(a.Name, b.Name) })
	return page(out, limit, offset), nil
}

func (r *LocationRepository) Exists(_ context.Context, ref entity.LocationRef) (bool, error) {
	var ok bool
	r.db.read(func(st *state) {
		switch ref.Kind {
		case entity.LocationStore:
			_, ok = st.stores[ref.ID]
		case entity.LocationShop:
			_, ok = st.shops[ref.ID]
		}
	})
	return ok, nil
}

// LocationInventoryRepository registros de stock por (producto, ubicación).
// Los bloqueos los da el escritor único de Store.Run.
type LocationInventoryRepository struct{ db db }

func stockKey(productID string, loc entity.LocationRef) string {
	return loc.String() + "/" + productID
}

func (r *LocationInventoryRepository) Get(_ context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	var out *entity.LocationInventory
	r.db.read(func(st *state) {
		out = st.stock[stockKey(productID, loc)].Clone()
	})
	return out, nil
}

func (r *LocationInventoryRepository) GetForUpdate(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	return r.Get(ctx, productID, loc)
}

func (r *LocationInventoryRepository) LockOrCreate(_ context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	var out *entity.LocationInventory
	r.db.write(func(st *state) {
		k := stockKey(productID, loc)
		rec, ok := st.stock[k]
		if !ok {
			rec = entity.NewLocationInventory(productID, loc)
			st.stock[k] = rec
		}
		out = rec.Clone()
	})
	return out, nil
}

func (r *LocationInventoryRepository) Save(_ context.Context, rec *entity.LocationInventory) error {
	r.db.write(func(st *state) {
		st.stock[stockKey(rec.ProductID, rec.Location)] = rec.Clone()
	})
	return nil
}

func (r *LocationInventoryRepository) ListByLocation(_ context.Context, loc entity.LocationRef, limit, offset int) ([]*entity.LocationInventory, error) {
	var out []*entity.LocationInventory
	r.db.read(func(st *state) {
		for _, rec := range st.stock {
			if rec.Location == loc {
				out = append(out, rec.Clone())
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.LocationInventory) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return page(out, limit, offset), nil
}

// ActivityRepository historial en memoria, en orden de anexado.
type ActivityRepository struct{ db db }

func (r *ActivityRepository) Append(_ context.Context, a *entity.Activity) error {
	r.db.write(func(st *state) {
		st.activities = append(st.activities, cloneActivity(a))
	})
	return nil
}

// List devuelve lo más reciente primero.
func (r *ActivityRepository) List(_ context.Context, f entity.ActivityFilter) ([]*entity.Activity, error) {
	var out []*entity.Activity
	r.db.read(func(st *state) {
		for i := len(st.activities) - 1; i >= 0; i-- {
			a := st.activities[i]
			if f.Location != nil && a.Location != *f.Location {
				continue
			}
			if f.ProductID != "" && a.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && a.Date.Before(*f.From) {
				continue
			}
			if f.To != nil && a.Date.After(*f.To) {
				continue
			}
			out = append(out, cloneActivity(a))
		}
	})
	slices.SortStableFunc(out, func(a, b *entity.Activity) int { return b.Date.Compare(a.Date) })
	return page(out, f.Limit, f.Offset), nil
}

// TransferRepository traslados en memoria.
type TransferRepository struct{ db db }

func (r *TransferRepository) Create(_ context.Context, t *entity.Transfer) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.transfers[t.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.transfers[t.ID] = cloneTransfer(t)
	})
	return err
}

func (r *TransferRepository) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	r.db.read(func(st *state) {
		if t, ok := st.transfers[id]; ok {
			out = cloneTransfer(t)
		}
	})
	return out, nil
}

func (r *TransferRepository) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepository) Update(_ context.Context, t *entity.Transfer) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.transfers[t.ID]; !ok {
			err = domain.ErrMovementNotFound
			return
		}
		st.transfers[t.ID] = cloneTransfer(t)
	})
	return err
}

// SaleRepository ventas en memoria.
type SaleRepository struct{ db db }

func (r *SaleRepository) Create(_ context.Context, s *entity.Sale) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.sales[s.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.sales[s.ID] = cloneSale(s)
	})
	return err
}

func (r *SaleRepository) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.db.read(func(st *state) {
		if s, ok := st.sales[id]; ok {
			out = cloneSale(s)
		}
	})
	return out, nil
}

// InvoiceRepository facturas de proveedor en memoria.
type InvoiceRepository struct{ db db }

func (r *InvoiceRepository) Create(_ context.Context, inv *entity.SupplierInvoice) error {
	var err error
	r.db.write(func(st *state) {
		if _, ok := st.invoices[inv.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.invoices[inv.ID] = cloneInvoice(inv)
	})
	return err
}

func (r *InvoiceRepository) GetByID(_ context.Context, id string) (*entity.SupplierInvoice, error) {
	var out *entity.SupplierInvoice
	r.db.read(func(st *state) {
		if inv, ok := st.invoices[id]; ok {
			out = cloneInvoice(inv)
		}
	})
	return out, nil
}

func (r *InvoiceRepository) GetItemForUpdate(_ context.Context, invoiceID, itemID string) (*entity.InvoiceItem, error) {
	var out *entity.InvoiceItem
	r.db.read(func(st *state) {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return
		}
		for _, it := range inv.Items {
			if it.ID == itemID {
				c := it
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *InvoiceRepository) UpdateItemPlaced(_ context.Context, itemID string, placed int64) error {
	err := domain.ErrNotFound
	r.db.write(func(st *state) {
		for _, inv := range st.invoices {
			for i := range inv.Items {
				if inv.Items[i].ID == itemID {
					inv.Items[i].PlacedPieces = placed
					err = nil
					return
				}
			}
		}
	})
	return err
}

// PlacementRepository colocaciones en memoria.
type PlacementRepository struct{ db db }

func (r *PlacementRepository) Create(_ context.Context, p *entity.Placement) error {
	r.db.write(func(st *state) {
		st.placements[p.ID] = clonePlacement(p)
	})
	return nil
}

// UserRepository usuarios en memoria.
type UserRepository struct{ db db }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	var err error
	r.db.write(func(st *state) {
		for _, other := range st.users {
			if other.Email == u.Email {
				err = domain.ErrEmailAlreadyExists
				return
			}
		}
		st.users[u.ID] = cloneUser(u)
	})
	return err
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = cloneUser(u)
		}
	})
	return out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				out = cloneUser(u)
				return
			}
		}
	})
	return out, nil
}
