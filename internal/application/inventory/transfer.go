package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/inventory"
)

// TransferInput traslado de un almacén (From) a una tienda (To).
type TransferInput struct {
	RequestID    string
	UserID       string
	From         entity.LocationRef
	To           entity.LocationRef
	Items        []LineInput
	TransferDate time.Time
	Notes        string
}

// UpdateTransferInput reemplaza los ítems de un traslado existente.
type UpdateTransferInput struct {
	TransferID string
	TransferInput
}

// RevertTransferInput anula un traslado.
type RevertTransferInput struct {
	RequestID  string
	UserID     string
	TransferID string
}

func validateTransferRoute(from, to entity.LocationRef) error {
	if from.Kind != entity.LocationStore || !from.Valid() {
		return fmt.Errorf("%w: el origen debe ser un almacén", domain.ErrInvalidInput)
	}
	if to.Kind != entity.LocationShop || !to.Valid() {
		return fmt.Errorf("%w: el destino debe ser una tienda", domain.ErrInvalidInput)
	}
	return nil
}

// Transfer descuenta del almacén por lotes FIFO y agrega el manifiesto a la tienda destino.
func (s *MovementService) Transfer(ctx context.Context, in TransferInput) (*MovementResult, error) {
	if err := validateTransferRoute(in.From, in.To); err != nil {
		return nil, err
	}
	lines, err := pendingLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transfer := &entity.Transfer{
		ID:           s.newID(),
		From:         in.From,
		To:           in.To,
		Status:       entity.TransferStatusActive,
		Notes:        in.Notes,
		TransferDate: in.TransferDate,
		Version:      1,
		CreatedBy:    in.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if transfer.TransferDate.IsZero() {
		transfer.TransferDate = now
	}
	result := &MovementResult{ID: transfer.ID}

	err = s.execute(ctx, "transfer", in.RequestID, func(ctx context.Context, repos TxRepos) error {
		if err := ensureLocations(ctx, repos, in.From, in.To); err != nil {
			return err
		}
		resolved, err := resolveLines(ctx, repos, lines)
		if err != nil {
			return err
		}
		ws := newWorkset(repos, now)
		for _, l := range resolved {
			ws.need(l.product.ID, in.From, false)
			ws.need(l.product.ID, in.To, true)
		}
		if err := ws.lock(ctx); err != nil {
			return err
		}
		number, err := s.nextNumber(ctx, seqTransfer, s.cfg.TransferNumberPrefix)
		if err != nil {
			return err
		}
		transfer.Number = number

		acts, err := s.applyTransfer(ws, transfer, resolved, in.UserID, now)
		if err != nil {
			return err
		}
		if err := ws.flush(ctx); err != nil {
			return err
		}
		if err := repos.Transfers.Create(ctx, transfer); err != nil {
			return err
		}
		if err := appendActivities(ctx, repos, acts); err != nil {
			return err
		}
		result.Number = transfer.Number
		result.Records = ws.touched()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCommitted("transfer", transfer.ID, transfer.Number, in.UserID, len(transfer.Items))
	return result, nil
}

// UpdateTransfer revierte los ítems actuales y aplica los nuevos en la misma transacción.
func (s *MovementService) UpdateTransfer(ctx context.Context, in UpdateTransferInput) (*MovementResult, error) {
	if in.TransferID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateTransferRoute(in.From, in.To); err != nil {
		return nil, err
	}
	lines, err := pendingLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &MovementResult{ID: in.TransferID}
	var transfer *entity.Transfer

	err = s.execute(ctx, "transfer-update", in.RequestID, func(ctx context.Context, repos TxRepos) error {
		t, err := lockActiveTransfer(ctx, repos, in.TransferID)
		if err != nil {
			return err
		}
		if err := ensureLocations(ctx, repos, in.From, in.To); err != nil {
			return err
		}
		resolved, err := resolveLines(ctx, repos, lines)
		if err != nil {
			return err
		}

		ws := newWorkset(repos, now)
		for _, it := range t.Items {
			ws.need(it.ProductID, t.From, true)
			ws.need(it.ProductID, t.To, false)
		}
		for _, l := range resolved {
			ws.need(l.product.ID, in.From, false)
			ws.need(l.product.ID, in.To, true)
		}
		if err := ws.lock(ctx); err != nil {
			return err
		}

		reverted, err := s.revertTransfer(ctx, ws, t, in.UserID, now)
		if err != nil {
			return err
		}
		t.From, t.To = in.From, in.To
		t.Items = nil
		t.Notes = in.Notes
		if !in.TransferDate.IsZero() {
			t.TransferDate = in.TransferDate
		}
		applied, err := s.applyTransfer(ws, t, resolved, in.UserID, now)
		if err != nil {
			return err
		}
		t.Version++
		t.UpdatedAt = now

		if err := ws.flush(ctx); err != nil {
			return err
		}
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		if err := appendActivities(ctx, repos, append(reverted, applied...)); err != nil {
			return err
		}
		transfer = t
		result.Number = t.Number
		result.Records = ws.touched()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCommitted("transfer-update", transfer.ID, transfer.Number, in.UserID, len(transfer.Items))
	return result, nil
}

// RevertTransfer devuelve al almacén exactamente los lotes trasladados y anula el traslado.
func (s *MovementService) RevertTransfer(ctx context.Context, in RevertTransferInput) (*MovementResult, error) {
	if in.TransferID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	result := &MovementResult{ID: in.TransferID}
	var transfer *entity.Transfer

	err := s.execute(ctx, "transfer-revert", in.RequestID, func(ctx context.Context, repos TxRepos) error {
		t, err := lockActiveTransfer(ctx, repos, in.TransferID)
		if err != nil {
			return err
		}
		ws := newWorkset(repos, now)
		for _, it := range t.Items {
			ws.need(it.ProductID, t.From, true)
			ws.need(it.ProductID, t.To, false)
		}
		if err := ws.lock(ctx); err != nil {
			return err
		}
		acts, err := s.revertTransfer(ctx, ws, t, in.UserID, now)
		if err != nil {
			return err
		}
		t.Status = entity.TransferStatusCancelled
		t.Version++
		t.UpdatedAt = now

		if err := ws.flush(ctx); err != nil {
			return err
		}
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		if err := appendActivities(ctx, repos, acts); err != nil {
			return err
		}
		transfer = t
		result.Number = t.Number
		result.Records = ws.touched()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCommitted("transfer-revert", transfer.ID, transfer.Number, in.UserID, len(transfer.Items))
	return result, nil
}

func lockActiveTransfer(ctx context.Context, repos TxRepos, id string) (*entity.Transfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrMovementNotFound
	}
	if t.Status == entity.TransferStatusCancelled {
		return nil, fmt.Errorf("%w: el traslado %s ya fue anulado", domain.ErrConflict, t.Number)
	}
	return t, nil
}

// applyTransfer aplica cada ítem sobre los registros bloqueados y llena t.Items con sus manifiestos.
func (s *MovementService) applyTransfer(ws *workset, t *entity.Transfer, lines []resolvedLine, userID string, now time.Time) ([]*entity.Activity, error) {
	acts := make([]*entity.Activity, 0, 2*len(lines))
	from, to := t.From, t.To
	for _, l := range lines {
		src := ws.get(l.product.ID, from)
		if src == nil {
			return nil, lineError(l, &domain.MovementError{
				Err: domain.ErrLocationNotFound, Item: l.idx, Location: from.String(), Requested: l.total,
			})
		}
		manifest, err := inventory.DeductFrom(src, l.total)
		if err != nil {
			return nil, lineError(l, err)
		}
		dst := ws.get(l.product.ID, to)
		if !dst.CanAdd(l.total) {
			return nil, lineError(l, domain.ErrInvalidQuantity)
		}
		dst.Append(inventory.EntriesFromManifest(manifest, t.ID)...)

		t.Items = append(t.Items, entity.TransferItem{
			ProductID: l.product.ID,
			Packs:     l.qty.Packs,
			Pieces:    l.qty.Pieces,
			PackSize:  l.qty.PackSize,
			Quantity:  l.total,
			Manifest:  manifest,
		})
		acts = append(acts,
			s.activity(entity.ActivityTransfer, entity.DirectionOut, from, &to, l.product.ID, l.qty, manifest,
				t.ID, userID, now, s.desc.transferOut(l.product.Name, t.Number, to, l.qty)),
			s.activity(entity.ActivityReceipt, entity.DirectionIn, to, &from, l.product.ID, l.qty, manifest,
				t.ID, userID, now, s.desc.transferIn(l.product.Name, t.Number, from, l.qty)),
		)
	}
	return acts, nil
}

// revertTransfer deshace los ítems de t: retira de la tienda los lotes etiquetados con el traslado
// (y, si ya se vendió parte, el faltante por FIFO) y restaura en el almacén los lotes del manifiesto.
func (s *MovementService) revertTransfer(ctx context.Context, ws *workset, t *entity.Transfer, userID string, now time.Time) ([]*entity.Activity, error) {
	type productReversal struct {
		total    int64
		manifest entity.Manifest
	}
	order := make([]string, 0, len(t.Items))
	byProduct := make(map[string]*productReversal)
	for _, it := range t.Items {
		pr, ok := byProduct[it.ProductID]
		if !ok {
			pr = &productReversal{}
			byProduct[it.ProductID] = pr
			order = append(order, it.ProductID)
		}
		pr.total += it.Quantity
		pr.manifest = append(pr.manifest, it.Manifest...)
	}

	for i, productID := range order {
		pr := byProduct[productID]
		dst := ws.get(productID, t.To)
		if dst == nil {
			return nil, &domain.MovementError{
				Err: domain.ErrLocationNotFound, Item: i, ProductID: productID,
				Location: t.To.String(), Requested: pr.total,
			}
		}
		var removed int64
		for _, e := range dst.RemoveByTransfer(t.ID) {
			removed += e.TotalPieces()
		}
		if removed > pr.total {
			return nil, fmt.Errorf("%w: la tienda tiene %d piezas del traslado %s pero se trasladaron %d",
				domain.ErrDeductionInvariant, removed, t.ID, pr.total)
		}
		if short := pr.total - removed; short > 0 {
			if _, err := inventory.DeductFrom(dst, short); err != nil {
				err = domain.ItemError(i, err)
				var me *domain.MovementError
				if errors.As(err, &me) {
					me.ProductID = productID
					me.Requested = pr.total
					me.Available += removed
				}
				return nil, err
			}
		}
		src := ws.get(productID, t.From)
		src.Prepend(inventory.RestoreEntries(pr.manifest, t.ID)...)
	}

	names := make(map[string]string, len(order))
	for _, productID := range order {
		names[productID] = productID
		if p, err := ws.repos.Products.GetByID(ctx, productID); err == nil && p != nil {
			names[productID] = p.Name
		}
	}
	acts := make([]*entity.Activity, 0, 2*len(t.Items))
	from, to := t.From, t.To
	for _, it := range t.Items {
		q := entity.Quantity{Packs: it.Packs, Pieces: it.Pieces, PackSize: it.PackSize}
		acts = append(acts,
			s.activity(entity.ActivityAdjustment, entity.DirectionOut, to, &from, it.ProductID, q, it.Manifest,
				t.ID, userID, now, s.desc.reversal(names[it.ProductID], t.Number, entity.DirectionOut, q)),
			s.activity(entity.ActivityAdjustment, entity.DirectionIn, from, &to, it.ProductID, q, it.Manifest,
				t.ID, userID, now, s.desc.reversal(names[it.ProductID], t.Number, entity.DirectionIn, q)),
		)
	}
	return acts, nil
}
