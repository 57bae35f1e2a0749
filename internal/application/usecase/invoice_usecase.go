package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

// InvoiceUseCase registro de facturas de proveedor; la mercancía entra al stock vía colocaciones.
type InvoiceUseCase struct {
	txRunner inventory.TxRunner
	invoices repository.InvoiceRepository
}

// NewInvoiceUseCase construye el caso de uso. invoices se usa para lecturas fuera de transacción.
func NewInvoiceUseCase(txRunner inventory.TxRunner, invoices repository.InvoiceRepository) *InvoiceUseCase {
	return &InvoiceUseCase{txRunner: txRunner, invoices: invoices}
}

// Create valida los productos y persiste cabecera e ítems en una sola transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, userID string, in dto.CreateSupplierInvoiceRequest) (*dto.SupplierInvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la factura no tiene ítems", domain.ErrInvalidInput)
	}
	now := time.Now()
	inv := &entity.SupplierInvoice{
		ID:           uuid.New().String(),
		Number:       in.Number,
		SupplierName: in.SupplierName,
		InvoiceDate:  now,
		CreatedBy:    userID,
		CreatedAt:    now,
	}
	if in.InvoiceDate != nil {
		inv.InvoiceDate = *in.InvoiceDate
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		for i, it := range in.Items {
			if it.InvoicedPieces <= 0 || it.PackSize < 0 {
				return domain.ItemError(i, domain.ErrInvalidQuantity)
			}
			product, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ItemError(i, &domain.MovementError{Err: domain.ErrProductNotFound, Item: i, ProductID: it.ProductID})
			}
			packSize := it.PackSize
			if packSize == 0 {
				packSize = product.PackSize()
			}
			inv.Items = append(inv.Items, entity.InvoiceItem{
				ID:             uuid.New().String(),
				InvoiceID:      inv.ID,
				ProductID:      it.ProductID,
				BatchNumber:    it.BatchNumber,
				PackSize:       packSize,
				InvoicedPieces: it.InvoicedPieces,
				UnitCost:       it.UnitCost,
			})
		}
		return repos.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByID obtiene una factura con el avance de colocación de cada ítem.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierInvoiceResponse, error) {
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil || inv == nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

func toInvoiceResponse(inv *entity.SupplierInvoice) *dto.SupplierInvoiceResponse {
	out := &dto.SupplierInvoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		SupplierName: inv.SupplierName,
		InvoiceDate:  inv.InvoiceDate,
		Items:        make([]dto.SupplierInvoiceItemResponse, 0, len(inv.Items)),
		CreatedBy:    inv.CreatedBy,
		CreatedAt:    inv.CreatedAt,
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, dto.SupplierInvoiceItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			BatchNumber:     it.BatchNumber,
			PackSize:        it.PackSize,
			InvoicedPieces:  it.InvoicedPieces,
			PlacedPieces:    it.PlacedPieces,
			RemainingPieces: it.Remaining(),
			UnitCost:        it.UnitCost,
		})
	}
	return out
}
