package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// LineRequest ítem de traslado: paquetes + piezas. PackSize 0 usa el del producto.
type LineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Packs     int64  `json:"packs" validate:"min=0"`
	Pieces    int64  `json:"pieces" validate:"min=0"`
	PackSize  int64  `json:"pack_size" validate:"min=0"`
}

// TransferRequest body para POST /api/transfers y PUT /api/transfers/:id.
type TransferRequest struct {
	FromStoreID  string        `json:"from_store_id" validate:"required"`
	ToShopID     string        `json:"to_shop_id" validate:"required"`
	Items        []LineRequest `json:"items" validate:"required,min=1,dive"`
	TransferDate *time.Time    `json:"transfer_date"`
	Notes        string        `json:"notes" validate:"max=500"`
}

// SaleLineRequest ítem de venta; UnitPrice nil usa el precio del producto.
type SaleLineRequest struct {
	LineRequest
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// SaleRequest body para POST /api/sales.
type SaleRequest struct {
	ShopID        string            `json:"shop_id" validate:"required"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card credit"`
	CustomerName  string            `json:"customer_name" validate:"required_if=PaymentMethod credit,max=200"`
	AmountPaid    *decimal.Decimal  `json:"amount_paid"`
}

// PlacementRequest body para POST /api/placements.
type PlacementRequest struct {
	InvoiceID string                 `json:"invoice_id" validate:"required"`
	Items     []PlacementItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PlacementItemRequest ítem de factura a colocar en un almacén.
type PlacementItemRequest struct {
	InvoiceItemID string `json:"invoice_item_id" validate:"required"`
	StoreID       string `json:"store_id" validate:"required"`
	BatchNumber   string `json:"batch_number"`
	Packs         int64  `json:"packs" validate:"min=0"`
	Pieces        int64  `json:"pieces" validate:"min=0"`
	PackSize      int64  `json:"pack_size" validate:"min=0"`
}

// LocationInventoryResponse registro de inventario con sus lotes FIFO.
type LocationInventoryResponse struct {
	ProductID     string              `json:"product_id"`
	Location      entity.LocationRef  `json:"location"`
	TotalQuantity int64               `json:"total_quantity"`
	Entries       []entity.BatchEntry `json:"entries"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// LocationInventoryListResponse registros de una ubicación.
type LocationInventoryListResponse struct {
	Items []LocationInventoryResponse `json:"items"`
	Page  PageResponse                `json:"page"`
}

// MovementResponse documento creado y estado final de los registros tocados.
type MovementResponse struct {
	ID      string                      `json:"id"`
	Number  string                      `json:"number,omitempty"`
	Records []LocationInventoryResponse `json:"records"`
	Sale    *SaleResponse               `json:"sale,omitempty"`
}

// TransferItemResponse ítem de traslado con el manifiesto de lotes extraídos.
type TransferItemResponse struct {
	ProductID string          `json:"product_id"`
	Packs     int64           `json:"packs"`
	Pieces    int64           `json:"pieces"`
	PackSize  int64           `json:"pack_size"`
	Quantity  int64           `json:"quantity"`
	Manifest  entity.Manifest `json:"manifest"`
}

// TransferResponse documento de traslado.
type TransferResponse struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	From         entity.LocationRef     `json:"from"`
	To           entity.LocationRef     `json:"to"`
	Items        []TransferItemResponse `json:"items"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes"`
	TransferDate time.Time              `json:"transfer_date"`
	Version      int                    `json:"version"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// SaleItemResponse línea de venta con importes.
type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Packs     int64           `json:"packs"`
	Pieces    int64           `json:"pieces"`
	PackSize  int64           `json:"pack_size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	VAT       decimal.Decimal `json:"vat"`
	Total     decimal.Decimal `json:"total"`
	Manifest  entity.Manifest `json:"manifest"`
}

// SaleResponse documento de venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	ShopID        string             `json:"shop_id"`
	Items         []SaleItemResponse `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	VAT           decimal.Decimal    `json:"vat"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	BalanceDue    decimal.Decimal    `json:"balance_due"`
	CreatedBy     string             `json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ActivityResponse entrada del historial de movimientos.
type ActivityResponse struct {
	ID           string              `json:"id"`
	Type         string              `json:"type"`
	Direction    string              `json:"direction"`
	Location     entity.LocationRef  `json:"location"`
	Counterparty *entity.LocationRef `json:"counterparty,omitempty"`
	ProductID    string              `json:"product_id"`
	Packs        int64               `json:"packs"`
	Pieces       int64               `json:"pieces"`
	PackSize     int64               `json:"pack_size"`
	Quantity     int64               `json:"quantity"`
	BatchNumber  string              `json:"batch_number,omitempty"`
	MovementID   string              `json:"movement_id"`
	UserID       string              `json:"user_id"`
	Date         time.Time           `json:"date"`
	Description  string              `json:"description"`
}

// ActivityListResponse historial paginado.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InconsistentRecordResponse registro cuyo total no coincide con la suma de lotes.
type InconsistentRecordResponse struct {
	ProductID     string `json:"product_id"`
	TotalQuantity int64  `json:"total_quantity"`
	EntriesTotal  int64  `json:"entries_total"`
}

// VerifyLocationResponse resultado de la verificación de consistencia de una ubicación.
type VerifyLocationResponse struct {
	Location     entity.LocationRef           `json:"location"`
	Checked      int                          `json:"checked"`
	Consistent   bool                         `json:"consistent"`
	Inconsistent []InconsistentRecordResponse `json:"inconsistent"`
}
