package entity

// BatchEntry cantidad restante de un lote en una ubicación, expresada en el packSize propio del lote
// (puede diferir del packSize actual del producto).
type BatchEntry struct {
	BatchNumber      string `json:"batch_number"`
	PackSize         int64  `json:"pack_size"`
	Packs            int64  `json:"packs"`
	Pieces           int64  `json:"pieces"`
	SourceTransferID string `json:"source_transfer_id,omitempty"`
}

// TotalPieces packs*packSize + pieces.
func (b BatchEntry) TotalPieces() int64 {
	return b.Packs*b.PackSize + b.Pieces
}

// Valid packs, pieces >= 0 y packSize >= 1.
func (b BatchEntry) Valid() bool {
	return b.Packs >= 0 && b.Pieces >= 0 && b.PackSize >= 1
}

// NewBatchEntry construye una entrada normalizada con total piezas en el packSize dado.
func NewBatchEntry(batchNumber string, total, packSize int64, sourceTransferID string) (BatchEntry, error) {
	q, err := QuantityFromTotal(total, packSize)
	if err != nil {
		return BatchEntry{}, err
	}
	return BatchEntry{
		BatchNumber:      batchNumber,
		PackSize:         packSize,
		Packs:            q.Packs,
		Pieces:           q.Pieces,
		SourceTransferID: sourceTransferID,
	}, nil
}

// ManifestLine una línea del manifiesto de deducción: lo extraído de un lote.
type ManifestLine struct {
	BatchNumber      string `json:"batch_number"`
	PackSize         int64  `json:"pack_size"`
	PacksDrawn       int64  `json:"packs_drawn"`
	PiecesDrawn      int64  `json:"pieces_drawn"`
	SourceTransferID string `json:"source_transfer_id,omitempty"`
}

// TotalPieces piezas extraídas en esta línea.
func (m ManifestLine) TotalPieces() int64 {
	return m.PacksDrawn*m.PackSize + m.PiecesDrawn
}

// Manifest lista ordenada de líneas extraídas.
type Manifest []ManifestLine

// TotalPieces suma de piezas del manifiesto.
func (m Manifest) TotalPieces() int64 {
	var total int64
	for _, l := range m {
		total += l.TotalPieces()
	}
	return total
}
