package sales

import (
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// LineTotals calcula subtotal, IVA y total de una línea. unitPrice es por pieza y sin IVA.
func LineTotals(unitPrice, taxRate decimal.Decimal, pieces int64) (subtotal, vat, total decimal.Decimal) {
	subtotal = unitPrice.Mul(decimal.NewFromInt(pieces)).Round(moneyPlaces)
	vat = subtotal.Mul(taxRate).Round(moneyPlaces)
	total = subtotal.Add(vat)
	return subtotal, vat, total
}

// ApplyTotals completa los importes de cada ítem y de la venta, incluido el saldo a crédito.
// amountPaid nil significa pago completo (salvo crédito, donde nil equivale a 0).
func ApplyTotals(sale *entity.Sale, amountPaid *decimal.Decimal) error {
	sale.Subtotal, sale.VAT, sale.Total = decimal.Zero, decimal.Zero, decimal.Zero
	for i := range sale.Items {
		it := &sale.Items[i]
		if it.UnitPrice.IsNegative() || it.TaxRate.IsNegative() {
			return domain.ItemError(i, domain.ErrInvalidInput)
		}
		it.Subtotal, it.VAT, it.Total = LineTotals(it.UnitPrice, it.TaxRate, it.Quantity)
		sale.Subtotal = sale.Subtotal.Add(it.Subtotal)
		sale.VAT = sale.VAT.Add(it.VAT)
		sale.Total = sale.Total.Add(it.Total)
	}

	switch sale.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCard:
		sale.AmountPaid = sale.Total
		sale.BalanceDue = decimal.Zero
	case entity.PaymentCredit:
		if sale.CustomerName == "" {
			return domain.ErrInvalidInput
		}
		paid := decimal.Zero
		if amountPaid != nil {
			paid = amountPaid.Round(moneyPlaces)
		}
		if paid.IsNegative() || paid.GreaterThan(sale.Total) {
			return domain.ErrInvalidInput
		}
		sale.AmountPaid = paid
		sale.BalanceDue = sale.Total.Sub(paid)
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
