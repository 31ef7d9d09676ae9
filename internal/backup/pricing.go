package backup

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Price applies the order discount to a base amount and adds the tip on
// the discounted value:
//
//	discounted = base * (1 - discount/100)
//	tip        = discounted * tipPercent/100   (0 when tips are off)
//	due        = discounted + tip
func Price(base, discountPercent, tipPercent decimal.Decimal, tipEnabled bool) (due, tip decimal.Decimal) {
	discounted := base.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred)))

	tip = decimal.Zero
	if tipEnabled {
		tip = discounted.Mul(tipPercent).Div(hundred)
	}

	return discounted.Add(tip), tip
}

// Subtotal is the discounted amount without the tip, which is what the
// billing backend books as paid.
func (p Portion) Subtotal() decimal.Decimal {
	return p.AmountDue.Sub(p.Tip)
}
