package core

import "github.com/shopspring/decimal"

// Aggregate folds computed lines into document totals. It sums the already rounded
// per-line amounts and never re-derives them from raw inputs, so each tax bucket may
// differ from a single end-of-document rounding by up to 0.01 per line.
// An empty slice yields all-zero totals.
func Aggregate(lines []LineItem) DocumentTotals {
	t := DocumentTotals{
		Subtotal:  decimal.Zero,
		CGSTTotal: decimal.Zero,
		SGSTTotal: decimal.Zero,
		IGSTTotal: decimal.Zero,
	}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.TaxableValue)
		t.CGSTTotal = t.CGSTTotal.Add(l.CGSTAmount)
		t.SGSTTotal = t.SGSTTotal.Add(l.SGSTAmount)
		t.IGSTTotal = t.IGSTTotal.Add(l.IGSTAmount)
	}
	t.TotalTax = t.CGSTTotal.Add(t.SGSTTotal).Add(t.IGSTTotal)
	t.GrandTotal = t.Subtotal.Add(t.TotalTax)
	return t
}

// SumLineTotals returns Σ lineTotal, used to reconcile against GrandTotal.
func SumLineTotals(lines []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

// Reconciles reports whether the grand total matches the sum of line totals within the
// accepted tolerance of 0.01 per line.
func (t DocumentTotals) Reconciles(lines []LineItem) bool {
	diff := t.GrandTotal.Sub(SumLineTotals(lines)).Abs()
	tolerance := decimal.New(1, -2).Mul(decimal.NewFromInt(int64(len(lines))))
	return diff.LessThanOrEqual(tolerance)
}
