package repository

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// TransferRepository documentos de traslado (con manifiesto por ítem).
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, transfer *entity.Transfer) error
}

// SaleRepository documentos de venta.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
}

// InvoiceRepository facturas de proveedor y avance de colocación por ítem.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.SupplierInvoice) error
	GetByID(ctx context.Context, id string) (*entity.SupplierInvoice, error)
	GetItemForUpdate(ctx context.Context, invoiceID, itemID string) (*entity.InvoiceItem, error)
	UpdateItemPlaced(ctx context.Context, itemID string, placedPieces int64) error
}

// PlacementRepository documentos de colocación.
type PlacementRepository interface {
	Create(ctx context.Context, placement *entity.Placement) error
}
