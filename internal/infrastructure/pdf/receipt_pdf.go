// Package pdf genera el comprobante imprimible de una venta en tienda.
//
// Layout (ticket en A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  Tienda + dirección/tel      │  N° Venta + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Cliente / forma de pago                                    │
//	│  TABLA: Cant | Producto | P.Unit | IVA% | Total             │
//	│  TOTALES: Subtotal / IVA / TOTAL / Pagado / Saldo           │
//	│  QR con número y total                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

var _ usecase.ReceiptRenderer = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var paymentLabels = map[string]string{
	"cash":   "Efectivo",
	"card":   "Tarjeta",
	"credit": "Crédito",
}

// ReceiptGenerator comprobantes de venta con Maroto v2.
type ReceiptGenerator struct{}

func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderSaleReceipt(_ context.Context, r *usecase.SaleReceipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta "+r.Sale.Number, true).
		WithAuthor(r.Shop.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(r.Sale, r.Shop))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(r.Sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(r.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.Sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(qrRow(r.Sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(sale *entity.Sale, shop *entity.Shop) core.Row {
	contact := strings.Join(nonEmptyAll(shop.Address, shop.Phone), "   |   ")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(shop.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(contact, "—"), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(sale.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(sale *entity.Sale) core.Row {
	method := paymentLabels[sale.PaymentMethod]
	if method == "" {
		method = sale.PaymentMethod
	}
	return row.New(12).Add(
		col.New(8).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(sale.CustomerName, "Público en general"), props.Text{Size: 9, Top: 6}),
		),
		col.New(4).Add(
			text.New("FORMA DE PAGO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(method, props.Text{Size: 9, Align: align.Right, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

func tableRows(lines []usecase.ReceiptLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := l.ProductName
		if l.SKU != "" {
			name = l.SKU + " " + name
		}
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(quantityLabel(l.SaleItem), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.TaxRate.Shift(2).StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatMoney(l.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(sale *entity.Sale) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	labels := col.New(3).Add(label("Subtotal:"), label("IVA:"), label("TOTAL:"))
	values := col.New(3).Add(value(formatMoney(sale.Subtotal)), value(formatMoney(sale.VAT)), value(formatMoney(sale.Total)))
	if sale.BalanceDue.IsPositive() {
		labels.Add(label("Pagado:"), label("Saldo pendiente:"))
		values.Add(value(formatMoney(sale.AmountPaid)), value(formatMoney(sale.BalanceDue)))
	}
	return row.New(26).Add(col.New(6), labels, values)
}

func qrRow(sale *entity.Sale) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(sale.Number+"|"+sale.Total.StringFixed(2), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New("Conserve este comprobante para cualquier aclaración.", props.Text{
			Size: 8, Top: 4, Left: 3, Color: colorGray,
		})),
	)
}

// quantityLabel "2 paq + 5 pz" o solo piezas si la línea no usa paquetes.
func quantityLabel(it entity.SaleItem) string {
	if it.Packs == 0 {
		return fmt.Sprintf("%d pz", it.Pieces)
	}
	if it.Pieces == 0 {
		return fmt.Sprintf("%d paq", it.Packs)
	}
	return fmt.Sprintf("%d paq + %d pz", it.Packs, it.Pieces)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonEmptyAll(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formatMoney "$1.234,50": puntos de miles y dos decimales.
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + string(buf) + "," + frac
}
