package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"category_id"`
	PiecesPerPack int64           `json:"pieces_per_pack" validate:"omitempty,min=1"`
	Price         decimal.Decimal `json:"price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"category_id"`
	PiecesPerPack int64           `json:"pieces_per_pack"`
	Price         decimal.Decimal `json:"price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
