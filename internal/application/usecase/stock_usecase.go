package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

// verifyPageSize tamaño de página al recorrer una ubicación completa.
const verifyPageSize = 500

// StockUseCase consultas de inventario, historial y documentos de movimiento.
type StockUseCase struct {
	stock      repository.LocationInventoryRepository
	locations  repository.LocationRepository
	activities repository.ActivityRepository
	transfers  repository.TransferRepository
	sales      repository.SaleRepository
	log        zerolog.Logger
}

// NewStockUseCase construye el caso de uso de consultas.
func NewStockUseCase(
	stock repository.LocationInventoryRepository,
	locations repository.LocationRepository,
	activities repository.ActivityRepository,
	transfers repository.TransferRepository,
	sales repository.SaleRepository,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{
		stock:      stock,
		locations:  locations,
		activities: activities,
		transfers:  transfers,
		sales:      sales,
		log:        log,
	}
}

func (uc *StockUseCase) ensureLocation(ctx context.Context, loc entity.LocationRef) error {
	if !loc.Valid() {
		return domain.ErrInvalidInput
	}
	ok, err := uc.locations.Exists(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.MovementError{Err: domain.ErrLocationNotFound, Item: -1, Location: loc.String()}
	}
	return nil
}

// GetRecord registro de un producto en una ubicación (nil si nunca tuvo stock).
func (uc *StockUseCase) GetRecord(ctx context.Context, loc entity.LocationRef, productID string) (*dto.LocationInventoryResponse, error) {
	if err := uc.ensureLocation(ctx, loc); err != nil {
		return nil, err
	}
	rec, err := uc.stock.Get(ctx, productID, loc)
	if err != nil || rec == nil {
		return nil, err
	}
	out := ToLocationInventoryResponse(rec)
	return &out, nil
}

// ListRecords registros de una ubicación, por producto.
func (uc *StockUseCase) ListRecords(ctx context.Context, loc entity.LocationRef, limit, offset int) (*dto.LocationInventoryListResponse, error) {
	if err := uc.ensureLocation(ctx, loc); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	list, err := uc.stock.ListByLocation(ctx, loc, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationInventoryResponse, 0, len(list))
	for _, rec := range list {
		items = append(items, ToLocationInventoryResponse(rec))
	}
	return &dto.LocationInventoryListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// VerifyLocation recalcula la suma de lotes de cada registro y reporta los que no cuadran con el total.
func (uc *StockUseCase) VerifyLocation(ctx context.Context, loc entity.LocationRef) (*dto.VerifyLocationResponse, error) {
	if err := uc.ensureLocation(ctx, loc); err != nil {
		return nil, err
	}
	out := &dto.VerifyLocationResponse{Location: loc, Inconsistent: []dto.InconsistentRecordResponse{}}
	for offset := 0; ; offset += verifyPageSize {
		list, err := uc.stock.ListByLocation(ctx, loc, verifyPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range list {
			out.Checked++
			if rec.Consistent() {
				continue
			}
			out.Inconsistent = append(out.Inconsistent, dto.InconsistentRecordResponse{
				ProductID:     rec.ProductID,
				TotalQuantity: rec.TotalQuantity,
				EntriesTotal:  rec.EntriesTotal(),
			})
		}
		if len(list) < verifyPageSize {
			break
		}
	}
	out.Consistent = len(out.Inconsistent) == 0
	if !out.Consistent {
		uc.log.Error().Str("location", loc.String()).Str("fault", "deduction_invariant").
			Int("records", len(out.Inconsistent)).Msg("registros con total distinto a la suma de lotes")
	}
	return out, nil
}

// ActivityQuery filtros del historial tal como llegan de la API.
type ActivityQuery struct {
	Location  *entity.LocationRef
	ProductID string
	From, To  *time.Time
	Limit     int
	Offset    int
}

// ListActivities historial de movimientos, más reciente primero.
func (uc *StockUseCase) ListActivities(ctx context.Context, q ActivityQuery) (*dto.ActivityListResponse, error) {
	if q.Location != nil && !q.Location.Valid() {
		return nil, domain.ErrInvalidInput
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	list, err := uc.activities.List(ctx, entity.ActivityFilter{
		Location:  q.Location,
		ProductID: q.ProductID,
		From:      q.From,
		To:        q.To,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ActivityResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toActivityResponse(a))
	}
	return &dto.ActivityListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// GetTransfer documento de traslado (nil si no existe).
func (uc *StockUseCase) GetTransfer(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// GetSale documento de venta (nil si no existe).
func (uc *StockUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}
	return toSaleResponse(s), nil
}

// ToLocationInventoryResponse registro de inventario como DTO.
func ToLocationInventoryResponse(rec *entity.LocationInventory) dto.LocationInventoryResponse {
	entries := rec.Entries
	if entries == nil {
		entries = []entity.BatchEntry{}
	}
	return dto.LocationInventoryResponse{
		ProductID:     rec.ProductID,
		Location:      rec.Location,
		TotalQuantity: rec.TotalQuantity,
		Entries:       entries,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func toActivityResponse(a *entity.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		Direction:    string(a.Direction),
		Location:     a.Location,
		Counterparty: a.Counterparty,
		ProductID:    a.ProductID,
		Packs:        a.Packs,
		Pieces:       a.Pieces,
		PackSize:     a.PackSize,
		Quantity:     a.Quantity,
		BatchNumber:  a.BatchNumber,
		MovementID:   a.MovementID,
		UserID:       a.UserID,
		Date:         a.Date,
		Description:  a.Description,
	}
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	out := &dto.TransferResponse{
		ID:           t.ID,
		Number:       t.Number,
		From:         t.From,
		To:           t.To,
		Items:        make([]dto.TransferItemResponse, 0, len(t.Items)),
		Status:       t.Status,
		Notes:        t.Notes,
		TransferDate: t.TransferDate,
		Version:      t.Version,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ProductID: it.ProductID,
			Packs:     it.Packs,
			Pieces:    it.Pieces,
			PackSize:  it.PackSize,
			Quantity:  it.Quantity,
			Manifest:  it.Manifest,
		})
	}
	return out
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		ShopID:        s.Shop.ID,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		PaymentMethod: s.PaymentMethod,
		CustomerName:  s.CustomerName,
		Subtotal:      s.Subtotal,
		VAT:           s.VAT,
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		BalanceDue:    s.BalanceDue,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID: it.ProductID,
			Packs:     it.Packs,
			Pieces:    it.Pieces,
			PackSize:  it.PackSize,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			TaxRate:   it.TaxRate,
			Subtotal:  it.Subtotal,
			VAT:       it.VAT,
			Total:     it.Total,
			Manifest:  it.Manifest,
		})
	}
	return out
}
