package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado.
const (
	TransferStatusActive    = "active"
	TransferStatusCancelled = "cancelled"
)

// Transfer traslado de almacén a tienda. Cada ítem guarda su manifiesto para poder revertirlo exactamente.
type Transfer struct {
	ID           string
	Number       string
	From         LocationRef
	To           LocationRef
	Items        []TransferItem
	Status       string
	Notes        string
	TransferDate time.Time
	Version      int
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransferItem línea de traslado ya aplicada.
type TransferItem struct {
	ProductID string   `json:"product_id"`
	Packs     int64    `json:"packs"`
	Pieces    int64    `json:"pieces"`
	PackSize  int64    `json:"pack_size"`
	Quantity  int64    `json:"quantity"`
	Manifest  Manifest `json:"manifest"`
}

// Métodos de pago de una venta.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentCredit = "credit"
)

// Sale venta en tienda.
type Sale struct {
	ID            string
	Number        string
	Shop          LocationRef
	Items         []SaleItem
	PaymentMethod string
	CustomerName  string
	Subtotal      decimal.Decimal
	VAT           decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal // > 0 solo en ventas a crédito
	CreatedBy     string
	CreatedAt     time.Time
}

// SaleItem línea de venta; UnitPrice es por pieza y sin IVA.
type SaleItem struct {
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
	Manifest  Manifest        `json:"manifest"`
}

// SupplierInvoice factura de proveedor; sus ítems se colocan en almacenes.
type SupplierInvoice struct {
	ID           string
	Number       string
	SupplierName string
	InvoiceDate  time.Time
	Items        []InvoiceItem
	CreatedBy    string
	CreatedAt    time.Time
}

// InvoiceItem ítem facturado: piezas facturadas vs. ya colocadas.
type InvoiceItem struct {
	ID             string
	InvoiceID      string
	ProductID      string
	BatchNumber    string
	PackSize       int64
	InvoicedPieces int64
	PlacedPieces   int64
	UnitCost       decimal.Decimal
}

// Remaining piezas aún no colocadas.
func (i InvoiceItem) Remaining() int64 {
	return i.InvoicedPieces - i.PlacedPieces
}

// Placement colocación de ítems de factura en almacenes.
type Placement struct {
	ID        string
	InvoiceID string
	Items     []PlacementItem
	CreatedBy string
	CreatedAt time.Time
}

// PlacementItem línea de colocación aplicada.
type PlacementItem struct {
	InvoiceItemID string `json:"invoice_item_id"`
	ProductID     string `json:"product_id"`
	StoreID       string `json:"store_id"`
	BatchNumber   string `json:"batch_number"`
	Packs         int64  `json:"packs"`
	Pieces        int64  `json:"pieces"`
	PackSize      int64  `json:"pack_size"`
	Quantity      int64  `json:"quantity"`
}
