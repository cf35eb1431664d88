// Package reconcile computes tax liabilities and the additional amount due
// after a revision. Pure arithmetic over decimals; inputs are validated at
// the request boundary, never coerced here.
package reconcile

import "github.com/shopspring/decimal"

// TaxRate is the policy constant applied to declared POS profit: 5%.
var TaxRate = decimal.NewFromFloat(0.05)

var oneHundred = decimal.NewFromInt(100)

// ComputeTax returns volume x (profitPct / 100) x TaxRate, rounded to two
// decimal places.
func ComputeTax(volume, profitPct decimal.Decimal) decimal.Decimal {
	return volume.
		Mul(profitPct).
		Div(oneHundred).
		Mul(TaxRate).
		Round(2)
}

// AdditionalDue returns max(0, tax - alreadyPaid). When a downward revision
// drops the liability below what was already collected the delta is zero:
// refunds are never computed here.
func AdditionalDue(tax, alreadyPaid decimal.Decimal) decimal.Decimal {
	due := tax.Sub(alreadyPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}
