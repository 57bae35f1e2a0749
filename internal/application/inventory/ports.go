package inventory

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products   repository.ProductRepository
	Locations  repository.LocationRepository
	Stock      repository.LocationInventoryRepository
	Activities repository.ActivityRepository
	Transfers  repository.TransferRepository
	Sales      repository.SaleRepository
	Invoices   repository.InvoiceRepository
	Placements repository.PlacementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo: ningún efecto parcial queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// SequenceGenerator entrega consecutivos por nombre (número de venta, de traslado).
// Los huecos por transacciones abortadas son aceptables.
type SequenceGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// IdempotencyGuard reserva ids de solicitud para rechazar reenvíos.
// Acquire devuelve domain.ErrDuplicateRequest si la clave ya existe.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}
