package usecase

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// MovementUseCase adapta las solicitudes HTTP al orquestador de movimientos.
type MovementUseCase struct {
	svc *inventory.MovementService
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(svc *inventory.MovementService) *MovementUseCase {
	return &MovementUseCase{svc: svc}
}

// Actor quién ejecuta el movimiento y con qué clave de idempotencia.
type Actor struct {
	UserID    string
	RequestID string
}

func toLineInputs(items []dto.LineRequest) []inventory.LineInput {
	out := make([]inventory.LineInput, len(items))
	for i, it := range items {
		out[i] = inventory.LineInput{ProductID: it.ProductID, Packs: it.Packs, Pieces: it.Pieces, PackSize: it.PackSize}
	}
	return out
}

func toTransferInput(actor Actor, in dto.TransferRequest) inventory.TransferInput {
	t := inventory.TransferInput{
		RequestID: actor.RequestID,
		UserID:    actor.UserID,
		From:      entity.StoreRef(in.FromStoreID),
		To:        entity.ShopRef(in.ToShopID),
		Items:     toLineInputs(in.Items),
		Notes:     in.Notes,
	}
	if in.TransferDate != nil {
		t.TransferDate = *in.TransferDate
	}
	return t
}

// Transfer traslado almacén -> tienda.
func (uc *MovementUseCase) Transfer(ctx context.Context, actor Actor, in dto.TransferRequest) (*dto.MovementResponse, error) {
	res, err := uc.svc.Transfer(ctx, toTransferInput(actor, in))
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

// UpdateTransfer reemplaza los ítems de un traslado (revertir + aplicar).
func (uc *MovementUseCase) UpdateTransfer(ctx context.Context, actor Actor, id string, in dto.TransferRequest) (*dto.MovementResponse, error) {
	res, err := uc.svc.UpdateTransfer(ctx, inventory.UpdateTransferInput{TransferID: id, TransferInput: toTransferInput(actor, in)})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

// RevertTransfer anula un traslado y devuelve la mercancía al almacén.
func (uc *MovementUseCase) RevertTransfer(ctx context.Context, actor Actor, id string) (*dto.MovementResponse, error) {
	res, err := uc.svc.RevertTransfer(ctx, inventory.RevertTransferInput{
		RequestID:  actor.RequestID,
		UserID:     actor.UserID,
		TransferID: id,
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

// Sell venta en tienda.
func (uc *MovementUseCase) Sell(ctx context.Context, actor Actor, in dto.SaleRequest) (*dto.MovementResponse, error) {
	items := make([]inventory.SaleLineInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = inventory.SaleLineInput{
			LineInput: inventory.LineInput{ProductID: it.ProductID, Packs: it.Packs, Pieces: it.Pieces, PackSize: it.PackSize},
			UnitPrice: it.UnitPrice,
		}
	}
	res, err := uc.svc.Sell(ctx, inventory.SaleInput{
		RequestID:     actor.RequestID,
		UserID:        actor.UserID,
		ShopID:        in.ShopID,
		Items:         items,
		PaymentMethod: in.PaymentMethod,
		CustomerName:  in.CustomerName,
		AmountPaid:    in.AmountPaid,
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

// Place colocación de ítems de factura en almacenes.
func (uc *MovementUseCase) Place(ctx context.Context, actor Actor, in dto.PlacementRequest) (*dto.MovementResponse, error) {
	items := make([]inventory.PlacementItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = inventory.PlacementItemInput{
			InvoiceItemID: it.InvoiceItemID,
			StoreID:       it.StoreID,
			BatchNumber:   it.BatchNumber,
			Packs:         it.Packs,
			Pieces:        it.Pieces,
			PackSize:      it.PackSize,
		}
	}
	res, err := uc.svc.Place(ctx, inventory.PlacementInput{
		RequestID: actor.RequestID,
		UserID:    actor.UserID,
		InvoiceID: in.InvoiceID,
		Items:     items,
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

func toMovementResponse(res *inventory.MovementResult) *dto.MovementResponse {
	out := &dto.MovementResponse{
		ID:      res.ID,
		Number:  res.Number,
		Records: make([]dto.LocationInventoryResponse, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		out.Records = append(out.Records, ToLocationInventoryResponse(rec))
	}
	if res.Sale != nil {
		out.Sale = toSaleResponse(res.Sale)
	}
	return out
}
