package repository

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// LocationRepository puerto para almacenes y tiendas (dos espacios de identidad separados).
type LocationRepository interface {
	CreateStore(ctx context.Context, store *entity.Store) error
	CreateShop(ctx context.Context, shop *entity.Shop) error
	GetStore(ctx context.Context, id string) (*entity.Store, error)
	GetShop(ctx context.Context, id string) (*entity.Shop, error)
	ListStores(ctx context.Context, limit, offset int) ([]*entity.Store, error)
	ListShops(ctx context.Context, limit, offset int) ([]*entity.Shop, error)
	// Exists indica si la ubicación referenciada existe en su espacio de identidad.
	Exists(ctx context.Context, ref entity.LocationRef) (bool, error)
}
