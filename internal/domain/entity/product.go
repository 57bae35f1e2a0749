package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. PiecesPerPack es el packSize por defecto de sus movimientos.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Description   string
	CategoryID    string
	PiecesPerPack int64
	Price         decimal.Decimal // precio por pieza, sin IVA
	TaxRate       decimal.Decimal // IVA como fracción: 0, 0.08, 0.16
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PackSize packSize efectivo (mínimo 1).
func (p *Product) PackSize() int64 {
	if p == nil || p.PiecesPerPack < 1 {
		return 1
	}
	return p.PiecesPerPack
}
