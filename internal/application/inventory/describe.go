package inventory

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// describer arma las descripciones legibles del historial con separadores de miles del idioma.
type describer struct {
	p *message.Printer
}

func newDescriber(locale string) *describer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &describer{p: message.NewPrinter(tag)}
}

func (d *describer) qty(q entity.Quantity) string {
	return d.p.Sprintf("%d paq. + %d pzas. (%d piezas)", q.Packs, q.Pieces, q.Total())
}

func (d *describer) placement(productName, batch, invoiceID string, q entity.Quantity) string {
	return d.p.Sprintf("Colocación de %s lote %s desde factura %s: %s", productName, batch, invoiceID, d.qty(q))
}

func (d *describer) transferOut(productName, number string, to entity.LocationRef, q entity.Quantity) string {
	return d.p.Sprintf("Traslado %s de %s hacia tienda %s: %s", number, productName, to.ID, d.qty(q))
}

func (d *describer) transferIn(productName, number string, from entity.LocationRef, q entity.Quantity) string {
	return d.p.Sprintf("Recepción del traslado %s de %s desde almacén %s: %s", number, productName, from.ID, d.qty(q))
}

func (d *describer) sale(productName, number string, q entity.Quantity) string {
	return d.p.Sprintf("Venta %s de %s: %s", number, productName, d.qty(q))
}

func (d *describer) reversal(productName, number string, dir entity.Direction, q entity.Quantity) string {
	if dir == entity.DirectionIn {
		return d.p.Sprintf("Reversión del traslado %s: devuelve %s al almacén, %s", number, productName, d.qty(q))
	}
	return d.p.Sprintf("Reversión del traslado %s: retira %s de la tienda, %s", number, productName, d.qty(q))
}
