package entity

import (
	"math"

	"github.com/jhoicas/Tiendas-api/internal/domain"
)

// Quantity representa una cantidad en paquetes + piezas sueltas para un tamaño de paquete dado.
// Es un valor inmutable: las conversiones devuelven valores nuevos.
type Quantity struct {
	Packs    int64 `json:"packs"`
	Pieces   int64 `json:"pieces"`
	PackSize int64 `json:"pack_size"`
}

// ToTotalPieces calcula packs*packSize + pieces. Un total que no cabe en int64 es ErrInvalidQuantity.
func ToTotalPieces(packs, pieces, packSize int64) (int64, error) {
	if packs < 0 || pieces < 0 || packSize < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	if packs > (math.MaxInt64-pieces)/packSize {
		return 0, domain.ErrInvalidQuantity
	}
	return packs*packSize + pieces, nil
}

// FromTotalPieces descompone un total de piezas en (packs, pieces) normalizados.
func FromTotalPieces(total, packSize int64) (packs, pieces int64, err error) {
	if total < 0 || packSize < 1 {
		return 0, 0, domain.ErrInvalidQuantity
	}
	return total / packSize, total % packSize, nil
}

// NewQuantity valida la entrada del usuario; no normaliza (pieces puede ser >= packSize).
func NewQuantity(packs, pieces, packSize int64) (Quantity, error) {
	if _, err := ToTotalPieces(packs, pieces, packSize); err != nil {
		return Quantity{}, err
	}
	return Quantity{Packs: packs, Pieces: pieces, PackSize: packSize}, nil
}

// QuantityFromTotal construye una cantidad normalizada desde un total de piezas.
func QuantityFromTotal(total, packSize int64) (Quantity, error) {
	packs, pieces, err := FromTotalPieces(total, packSize)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Packs: packs, Pieces: pieces, PackSize: packSize}, nil
}

// Total devuelve el total de piezas. Asume una cantidad válida.
func (q Quantity) Total() int64 {
	return q.Packs*q.PackSize + q.Pieces
}

// Normalize devuelve la cantidad equivalente con 0 <= pieces < packSize.
func (q Quantity) Normalize() Quantity {
	if q.PackSize < 1 {
		return q
	}
	n, _ := QuantityFromTotal(q.Total(), q.PackSize)
	return n
}

// IsZero indica si la cantidad no contiene piezas.
func (q Quantity) IsZero() bool {
	return q.Packs == 0 && q.Pieces == 0
}
