package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// PlacementInput colocación de ítems de una factura de proveedor en almacenes.
type PlacementInput struct {
	RequestID string
	UserID    string
	InvoiceID string
	Items     []PlacementItemInput
}

// PlacementItemInput ProductID, BatchNumber y PackSize son opcionales: por defecto los del ítem de factura.
type PlacementItemInput struct {
	InvoiceItemID string
	ProductID     string
	StoreID       string
	BatchNumber   string
	Packs         int64
	Pieces        int64
	PackSize      int64
}

type resolvedPlacement struct {
	resolvedLine
	invItem *entity.InvoiceItem
	store   entity.LocationRef
	batch   string
}

// Place coloca ítems facturados en almacenes: crea un lote nuevo por ítem; no hay deducción.
func (s *MovementService) Place(ctx context.Context, in PlacementInput) (*MovementResult, error) {
	if in.InvoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	pending := make([]int, 0, len(in.Items))
	for i, it := range in.Items {
		if it.InvoiceItemID == "" || it.StoreID == "" {
			return nil, domain.ItemError(i, domain.ErrInvalidInput)
		}
		if it.Packs < 0 || it.Pieces < 0 || it.PackSize < 0 {
			return nil, domain.ItemError(i, domain.ErrInvalidQuantity)
		}
		if (entity.Quantity{Packs: it.Packs, Pieces: it.Pieces}).IsZero() {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: ningún ítem tiene cantidad", domain.ErrInvalidInput)
	}

	now := s.now()
	placement := &entity.Placement{ID: s.newID(), InvoiceID: in.InvoiceID, CreatedBy: in.UserID, CreatedAt: now}
	result := &MovementResult{ID: placement.ID}

	err := s.execute(ctx, "placement", in.RequestID, func(ctx context.Context, repos TxRepos) error {
		// Ítems de factura primero y en orden de id; luego los registros de stock.
		itemIDs := make([]string, 0, len(pending))
		for _, i := range pending {
			itemIDs = append(itemIDs, in.Items[i].InvoiceItemID)
		}
		slices.Sort(itemIDs)
		itemIDs = slices.Compact(itemIDs)
		invItems := make(map[string]*entity.InvoiceItem, len(itemIDs))
		for _, id := range itemIDs {
			it, err := repos.Invoices.GetItemForUpdate(ctx, in.InvoiceID, id)
			if err != nil {
				return err
			}
			invItems[id] = it
		}

		ws := newWorkset(repos, now)
		products := make(map[string]*entity.Product)
		checkedStores := make(map[string]bool)
		placed := make(map[string]int64)
		lines := make([]resolvedPlacement, 0, len(pending))

		for _, i := range pending {
			it := in.Items[i]
			invItem := invItems[it.InvoiceItemID]
			if invItem == nil {
				return domain.ItemError(i, fmt.Errorf("%w: ítem de factura %s", domain.ErrNotFound, it.InvoiceItemID))
			}
			if it.ProductID != "" && it.ProductID != invItem.ProductID {
				return domain.ItemError(i, fmt.Errorf("%w: el producto no corresponde al ítem de factura", domain.ErrInvalidInput))
			}
			store := entity.StoreRef(it.StoreID)
			if !checkedStores[it.StoreID] {
				if err := ensureLocations(ctx, repos, store); err != nil {
					return domain.ItemError(i, err)
				}
				checkedStores[it.StoreID] = true
			}
			product := products[invItem.ProductID]
			if product == nil {
				p, err := repos.Products.GetByID(ctx, invItem.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					return domain.ItemError(i, &domain.MovementError{Err: domain.ErrProductNotFound, Item: i, ProductID: invItem.ProductID})
				}
				products[p.ID], product = p, p
			}

			packSize := product.PackSize()
			if invItem.PackSize > 0 {
				packSize = invItem.PackSize
			}
			if it.PackSize > 0 {
				packSize = it.PackSize
			}
			q, err := entity.NewQuantity(it.Packs, it.Pieces, packSize)
			if err != nil {
				return domain.ItemError(i, err)
			}
			batch := it.BatchNumber
			if batch == "" {
				batch = invItem.BatchNumber
			}
			if batch == "" {
				return domain.ItemError(i, fmt.Errorf("%w: número de lote requerido", domain.ErrInvalidInput))
			}

			if left := invItem.Remaining() - placed[invItem.ID]; q.Total() > left {
				return domain.ItemError(i, &domain.MovementError{
					Err: domain.ErrPlacementExceedsInvoice, Item: i,
					ProductID: product.ID, ProductName: product.Name, Location: store.String(),
					Requested: q.Total(), Available: left,
				})
			}
			placed[invItem.ID] += q.Total()
			ws.need(product.ID, store, true)
			lines = append(lines, resolvedPlacement{
				resolvedLine: resolvedLine{idx: i, product: product, qty: q.Normalize(), total: q.Total()},
				invItem:      invItem,
				store:        store,
				batch:        batch,
			})
		}

		if err := ws.lock(ctx); err != nil {
			return err
		}

		acts := make([]*entity.Activity, 0, len(lines))
		for _, l := range lines {
			entry, err := entity.NewBatchEntry(l.batch, l.total, l.qty.PackSize, "")
			if err != nil {
				return lineError(l.resolvedLine, err)
			}
			rec := ws.get(l.product.ID, l.store)
			if !rec.CanAdd(l.total) {
				return lineError(l.resolvedLine, domain.ErrInvalidQuantity)
			}
			rec.Append(entry)
			placement.Items = append(placement.Items, entity.PlacementItem{
				InvoiceItemID: l.invItem.ID,
				ProductID:     l.product.ID,
				StoreID:       l.store.ID,
				BatchNumber:   l.batch,
				Packs:         l.qty.Packs,
				Pieces:        l.qty.Pieces,
				PackSize:      l.qty.PackSize,
				Quantity:      l.total,
			})
			act := s.activity(entity.ActivityPlacement, entity.DirectionIn, l.store, nil,
				l.product.ID, l.qty, nil, placement.ID, in.UserID, now,
				s.desc.placement(l.product.Name, l.batch, in.InvoiceID, l.qty))
			act.BatchNumber = l.batch
			acts = append(acts, act)
		}

		// Escrituras: solo después de validar todos los ítems.
		if err := ws.flush(ctx); err != nil {
			return err
		}
		for _, id := range itemIDs {
			if add := placed[id]; add > 0 {
				if err := repos.Invoices.UpdateItemPlaced(ctx, id, invItems[id].PlacedPieces+add); err != nil {
					return err
				}
			}
		}
		if err := repos.Placements.Create(ctx, placement); err != nil {
			return err
		}
		if err := appendActivities(ctx, repos, acts); err != nil {
			return err
		}
		result.Records = ws.touched()
		result.Placement = placement
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCommitted("placement", placement.ID, "", in.UserID, len(placement.Items))
	return result, nil
}
