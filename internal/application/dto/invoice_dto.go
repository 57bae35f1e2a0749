package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSupplierInvoiceRequest factura de proveedor con sus ítems.
type CreateSupplierInvoiceRequest struct {
	Number       string                       `json:"number" validate:"required,max=100"`
	SupplierName string                       `json:"supplier_name" validate:"required,max=200"`
	InvoiceDate  *time.Time                   `json:"invoice_date"`
	Items        []SupplierInvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SupplierInvoiceItemRequest ítem facturado. PackSize 0 usa el del producto.
type SupplierInvoiceItemRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	BatchNumber    string          `json:"batch_number" validate:"required,max=100"`
	PackSize       int64           `json:"pack_size" validate:"min=0"`
	InvoicedPieces int64           `json:"invoiced_pieces" validate:"min=1"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// SupplierInvoiceResponse salida de una factura de proveedor.
type SupplierInvoiceResponse struct {
	ID           string                        `json:"id"`
	Number       string                        `json:"number"`
	SupplierName string                        `json:"supplier_name"`
	InvoiceDate  time.Time                     `json:"invoice_date"`
	Items        []SupplierInvoiceItemResponse `json:"items"`
	CreatedBy    string                        `json:"created_by"`
	CreatedAt    time.Time                     `json:"created_at"`
}

// SupplierInvoiceItemResponse ítem con piezas facturadas, colocadas y pendientes.
type SupplierInvoiceItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	BatchNumber     string          `json:"batch_number"`
	PackSize        int64           `json:"pack_size"`
	InvoicedPieces  int64           `json:"invoiced_pieces"`
	PlacedPieces    int64           `json:"placed_pieces"`
	RemainingPieces int64           `json:"remaining_pieces"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}
