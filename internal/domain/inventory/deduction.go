package inventory

import (
	"fmt"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// Deduct consume lotes en el orden de la lista (FIFO: el lote colocado primero se consume primero)
// hasta cubrir requested piezas. No modifica entries: devuelve una lista nueva sin los lotes agotados
// y el manifiesto de lo extraído.
//
// El llamador debe validar antes que TotalQuantity >= requested. Si los lotes no alcanzan,
// el registro está inconsistente y se devuelve ErrDeductionInvariant.
func Deduct(entries []entity.BatchEntry, requested int64) ([]entity.BatchEntry, entity.Manifest, error) {
	if requested <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}
	updated := make([]entity.BatchEntry, 0, len(entries))
	manifest := make(entity.Manifest, 0, 1)
	remaining := requested

	for i, e := range entries {
		if !e.Valid() {
			return nil, nil, fmt.Errorf("%w: lote %q (posición %d) con cantidad negativa o packSize inválido",
				domain.ErrDeductionInvariant, e.BatchNumber, i)
		}
		available := e.TotalPieces()
		if remaining == 0 || available == 0 {
			if available > 0 {
				updated = append(updated, e)
			}
			continue
		}
		drawn := min(remaining, available)
		packsDrawn, piecesDrawn, _ := entity.FromTotalPieces(drawn, e.PackSize)
		manifest = append(manifest, entity.ManifestLine{
			BatchNumber:      e.BatchNumber,
			PackSize:         e.PackSize,
			PacksDrawn:       packsDrawn,
			PiecesDrawn:      piecesDrawn,
			SourceTransferID: e.SourceTransferID,
		})
		remaining -= drawn

		left := available - drawn
		if left == 0 {
			continue
		}
		e.Packs, e.Pieces, _ = entity.FromTotalPieces(left, e.PackSize)
		updated = append(updated, e)
	}

	if remaining > 0 {
		return nil, nil, fmt.Errorf("%w: faltan %d de %d piezas al recorrer los lotes",
			domain.ErrDeductionInvariant, remaining, requested)
	}
	return updated, manifest, nil
}

// DeductFrom aplica Deduct sobre un registro y actualiza su total en el mismo paso.
// Valida disponibilidad antes de tocar lotes; en error el registro no cambia.
func DeductFrom(rec *entity.LocationInventory, requested int64) (entity.Manifest, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if rec.TotalQuantity < requested {
		return nil, &domain.MovementError{
			Err:       domain.ErrInsufficientStock,
			Item:      -1,
			ProductID: rec.ProductID,
			Location:  rec.Location.String(),
			Requested: requested,
			Available: rec.TotalQuantity,
		}
	}
	if !rec.Consistent() {
		return nil, fmt.Errorf("%w: %s en %s total=%d suma_lotes=%d",
			domain.ErrDeductionInvariant, rec.ProductID, rec.Location, rec.TotalQuantity, rec.EntriesTotal())
	}
	updated, manifest, err := Deduct(rec.Entries, requested)
	if err != nil {
		return nil, err
	}
	rec.Entries = updated
	rec.TotalQuantity -= requested
	return manifest, nil
}

// EntriesFromManifest convierte un manifiesto en lotes de destino etiquetados con el traslado.
func EntriesFromManifest(m entity.Manifest, transferID string) []entity.BatchEntry {
	out := make([]entity.BatchEntry, 0, len(m))
	for _, l := range m {
		out = append(out, entity.BatchEntry{
			BatchNumber:      l.BatchNumber,
			PackSize:         l.PackSize,
			Packs:            l.PacksDrawn,
			Pieces:           l.PiecesDrawn,
			SourceTransferID: transferID,
		})
	}
	return out
}

// RestoreEntries convierte un manifiesto en lotes para devolver al origen al revertir un traslado.
// Conserva número de lote y packSize originales; la etiqueta marca la reversión.
func RestoreEntries(m entity.Manifest, transferID string) []entity.BatchEntry {
	out := make([]entity.BatchEntry, 0, len(m))
	for _, l := range m {
		out = append(out, entity.BatchEntry{
			BatchNumber:      l.BatchNumber,
			PackSize:         l.PackSize,
			Packs:            l.PacksDrawn,
			Pieces:           l.PiecesDrawn,
			SourceTransferID: ReversalTag(transferID),
		})
	}
	return out
}

// ReversalTag etiqueta de los lotes restaurados por la reversión de un movimiento.
func ReversalTag(movementID string) string {
	return "REVERTED-" + movementID
}
