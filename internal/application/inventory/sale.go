package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain/sales"
)

// SaleInput venta en tienda. AmountPaid solo aplica a crédito.
type SaleInput struct {
	RequestID     string
	UserID        string
	ShopID        string
	Items         []SaleLineInput
	PaymentMethod string
	CustomerName  string
	AmountPaid    *decimal.Decimal
}

// SaleLineInput UnitPrice nil usa el precio del producto.
type SaleLineInput struct {
	LineInput
	UnitPrice *decimal.Decimal
}

// Sell descuenta de la tienda por lotes FIFO y registra la venta con sus importes.
func (s *MovementService) Sell(ctx context.Context, in SaleInput) (*MovementResult, error) {
	shop := entity.ShopRef(in.ShopID)
	if !shop.Valid() {
		return nil, fmt.Errorf("%w: tienda requerida", domain.ErrInvalidInput)
	}
	lineInputs := make([]LineInput, len(in.Items))
	for i, it := range in.Items {
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, domain.ItemError(i, domain.ErrInvalidInput)
		}
		lineInputs[i] = it.LineInput
	}
	lines, err := pendingLines(lineInputs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := &entity.Sale{
		ID:            s.newID(),
		Shop:          shop,
		PaymentMethod: in.PaymentMethod,
		CustomerName:  in.CustomerName,
		CreatedBy:     in.UserID,
		CreatedAt:     now,
	}
	result := &MovementResult{ID: sale.ID}

	err = s.execute(ctx, "sale", in.RequestID, func(ctx context.Context, repos TxRepos) error {
		if err := ensureLocations(ctx, repos, shop); err != nil {
			return err
		}
		resolved, err := resolveLines(ctx, repos, lines)
		if err != nil {
			return err
		}
		ws := newWorkset(repos, now)
		for _, l := range resolved {
			ws.need(l.product.ID, shop, false)
		}
		if err := ws.lock(ctx); err != nil {
			return err
		}

		manifests := make([]entity.Manifest, 0, len(resolved))
		for _, l := range resolved {
			rec := ws.get(l.product.ID, shop)
			if rec == nil {
				return lineError(l, &domain.MovementError{
					Err: domain.ErrLocationNotFound, Item: l.idx, Location: shop.String(), Requested: l.total,
				})
			}
			manifest, err := inventory.DeductFrom(rec, l.total)
			if err != nil {
				return lineError(l, err)
			}
			manifests = append(manifests, manifest)

			price := l.product.Price
			if p := in.Items[l.idx].UnitPrice; p != nil {
				price = *p
			}
			sale.Items = append(sale.Items, entity.SaleItem{
				ProductID: l.product.ID,
				Packs:     l.qty.Packs,
				Pieces:    l.qty.Pieces,
				PackSize:  l.qty.PackSize,
				Quantity:  l.total,
				UnitPrice: price,
				TaxRate:   l.product.TaxRate,
				Manifest:  manifest,
			})
		}
		if err := sales.ApplyTotals(sale, in.AmountPaid); err != nil {
			return err
		}

		number, err := s.nextNumber(ctx, seqSale, s.cfg.SaleNumberPrefix)
		if err != nil {
			return err
		}
		sale.Number = number

		acts := make([]*entity.Activity, 0, len(resolved))
		for i, l := range resolved {
			acts = append(acts, s.activity(entity.ActivitySale, entity.DirectionOut, shop, nil,
				l.product.ID, l.qty, manifests[i], sale.ID, in.UserID, now,
				s.desc.sale(l.product.Name, sale.Number, l.qty)))
		}

		if err := ws.flush(ctx); err != nil {
			return err
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		if err := appendActivities(ctx, repos, acts); err != nil {
			return err
		}
		result.Number = sale.Number
		result.Records = ws.touched()
		result.Sale = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCommitted("sale", sale.ID, sale.Number, in.UserID, len(sale.Items))
	return result, nil
}
