package entity

import (
	"math"
	"time"
)

// LocationInventory registro único por (producto, ubicación): total cacheado + lotes en orden FIFO.
// TotalQuantity debe ser siempre igual a la suma de TotalPieces de Entries.
type LocationInventory struct {
	ProductID     string
	Location      LocationRef
	TotalQuantity int64
	Entries       []BatchEntry
	UpdatedAt     time.Time
}

// NewLocationInventory registro vacío para un par (producto, ubicación) sin stock.
func NewLocationInventory(productID string, loc LocationRef) *LocationInventory {
	return &LocationInventory{ProductID: productID, Location: loc, Entries: []BatchEntry{}}
}

// EntriesTotal suma de piezas de todos los lotes.
func (r *LocationInventory) EntriesTotal() int64 {
	var total int64
	for _, e := range r.Entries {
		total += e.TotalPieces()
	}
	return total
}

// Consistent verifica TotalQuantity == suma de lotes y que ningún lote sea negativo.
func (r *LocationInventory) Consistent() bool {
	for _, e := range r.Entries {
		if !e.Valid() {
			return false
		}
	}
	return r.TotalQuantity == r.EntriesTotal()
}

// CanAdd indica si n piezas caben en el total sin desbordar int64.
func (r *LocationInventory) CanAdd(n int64) bool {
	return n >= 0 && r.TotalQuantity <= math.MaxInt64-n
}

// Append agrega lotes al final (los más nuevos se consumen al último) y actualiza el total.
func (r *LocationInventory) Append(entries ...BatchEntry) {
	for _, e := range entries {
		if e.TotalPieces() == 0 {
			continue
		}
		r.Entries = append(r.Entries, e)
		r.TotalQuantity += e.TotalPieces()
	}
}

// Prepend agrega lotes al inicio (se consumen primero) y actualiza el total.
func (r *LocationInventory) Prepend(entries ...BatchEntry) {
	kept := make([]BatchEntry, 0, len(entries)+len(r.Entries))
	for _, e := range entries {
		if e.TotalPieces() == 0 {
			continue
		}
		kept = append(kept, e)
		r.TotalQuantity += e.TotalPieces()
	}
	r.Entries = append(kept, r.Entries...)
}

// RemoveByTransfer quita los lotes originados por un traslado y devuelve lo retirado.
func (r *LocationInventory) RemoveByTransfer(transferID string) []BatchEntry {
	var removed []BatchEntry
	kept := r.Entries[:0:0]
	for _, e := range r.Entries {
		if e.SourceTransferID == transferID {
			removed = append(removed, e)
			r.TotalQuantity -= e.TotalPieces()
			continue
		}
		kept = append(kept, e)
	}
	r.Entries = kept
	return removed
}

// Clone copia profunda (los lotes no se comparten).
func (r *LocationInventory) Clone() *LocationInventory {
	if r == nil {
		return nil
	}
	c := *r
	c.Entries = make([]BatchEntry, len(r.Entries))
	copy(c.Entries, r.Entries)
	return &c
}
