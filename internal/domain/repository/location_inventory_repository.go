package repository

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// LocationInventoryRepository puerto del registro de inventario por (producto, ubicación).
// Los métodos *ForUpdate bloquean el registro hasta el fin de la transacción.
type LocationInventoryRepository interface {
	Get(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error)
	// GetForUpdate devuelve nil, nil si el registro no existe.
	GetForUpdate(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error)
	// LockOrCreate crea el registro vacío si no existe (upsert) y lo bloquea.
	LockOrCreate(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error)
	// Save persiste lotes y total en el mismo paso.
	Save(ctx context.Context, rec *entity.LocationInventory) error
	ListByLocation(ctx context.Context, loc entity.LocationRef, limit, offset int) ([]*entity.LocationInventory, error)
}
