package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

// ReceiptLine línea de venta con los datos del producto ya resueltos.
type ReceiptLine struct {
	entity.SaleItem
	SKU         string
	ProductName string
}

// SaleReceipt datos del comprobante imprimible de una venta.
type SaleReceipt struct {
	Sale  *entity.Sale
	Shop  *entity.Shop
	Lines []ReceiptLine
}

// ReceiptRenderer genera el documento del comprobante (PDF).
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, r *SaleReceipt) ([]byte, error)
}

// ReceiptUseCase comprobantes de venta.
type ReceiptUseCase struct {
	sales     repository.SaleRepository
	locations repository.LocationRepository
	products  repository.ProductRepository
	renderer  ReceiptRenderer
}

func NewReceiptUseCase(
	sales repository.SaleRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
	renderer ReceiptRenderer,
) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, locations: locations, products: products, renderer: renderer}
}

// SaleReceipt genera el comprobante. Devuelve también la venta para que el llamador
// verifique el acceso a la tienda; sale nil si no existe.
func (uc *ReceiptUseCase) SaleReceipt(ctx context.Context, saleID string) (doc []byte, sale *entity.Sale, err error) {
	sale, err = uc.sales.GetByID(ctx, saleID)
	if err != nil || sale == nil {
		return nil, nil, err
	}
	shop, err := uc.locations.GetShop(ctx, sale.Shop.ID)
	if err != nil {
		return nil, nil, err
	}
	if shop == nil {
		shop = &entity.Shop{ID: sale.Shop.ID, Name: sale.Shop.ID}
	}

	r := &SaleReceipt{Sale: sale, Shop: shop, Lines: make([]ReceiptLine, 0, len(sale.Items))}
	for _, it := range sale.Items {
		line := ReceiptLine{SaleItem: it, ProductName: it.ProductID}
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if p != nil {
			line.SKU, line.ProductName = p.SKU, p.Name
		}
		r.Lines = append(r.Lines, line)
	}

	doc, err = uc.renderer.RenderSaleReceipt(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("comprobante %s: %w", sale.Number, err)
	}
	return doc, sale, nil
}
