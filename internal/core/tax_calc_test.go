package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name                    string
		qty, price, disc        string
		cgst, sgst, igst        string
		taxable, c, s, i, total string
	}{
		{"intra-state 18%", "2", "100", "0", "9", "9", "0", "200.00", "18.00", "18.00", "0.00", "236.00"},
		{"inter-state 18%", "2", "100", "0", "0", "0", "18", "200.00", "0.00", "0.00", "36.00", "236.00"},
		{"discount reduces taxable value", "10", "100", "50", "0", "0", "0", "950.00", "0.00", "0.00", "0.00", "950.00"},
		{"zero rated", "3", "33.33", "0", "0", "0", "0", "99.99", "0.00", "0.00", "0.00", "99.99"},
		{"half-up on each tax", "1", "10.05", "0", "2.5", "2.5", "0", "10.05", "0.25", "0.25", "0.00", "10.55"},
		{"fractional quantity", "1.5", "99.99", "0", "6", "6", "0", "149.99", "9.00", "9.00", "0.00", "167.99"},
		{"discount exceeds amount", "1", "10", "15", "9", "9", "0", "-5.00", "-0.45", "-0.45", "0.00", "-5.90"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLine(d(tt.qty), d(tt.price), d(tt.disc), d(tt.cgst), d(tt.sgst), d(tt.igst))
			assert.Equal(t, tt.taxable, got.TaxableValue.StringFixed(2), "taxable")
			assert.Equal(t, tt.c, got.CGSTAmount.StringFixed(2), "cgst")
			assert.Equal(t, tt.s, got.SGSTAmount.StringFixed(2), "sgst")
			assert.Equal(t, tt.i, got.IGSTAmount.StringFixed(2), "igst")
			assert.Equal(t, tt.total, got.LineTotal.StringFixed(2), "total")
		})
	}
}

// The line total is the sum of the individually rounded parts, never a rounding of the
// unrounded sum.
func TestComputeLine_RoundsEachStep(t *testing.T) {
	qtys := []string{"0", "1", "3", "7", "0.333", "12.5"}
	prices := []string{"0", "0.01", "19.99", "33.333", "1234.567"}
	rates := []string{"0", "2.5", "6", "9", "14", "18", "28"}

	for _, q := range qtys {
		for _, p := range prices {
			for _, r := range rates {
				base := d(q).Mul(d(p)).Round(2)
				tax := base.Mul(d(r)).Div(hundred).Round(2)
				want := base.Add(tax).Add(tax)

				got := ComputeLine(d(q), d(p), decimal.Zero, d(r), d(r), decimal.Zero)
				if !got.LineTotal.Equal(want) {
					t.Errorf("q=%s p=%s rate=%s: lineTotal %s, want %s", q, p, r, got.LineTotal, want)
				}
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":         "0",
		"   ":      "0",
		"null":     "0",
		"NULL":     "0",
		"abc":      "0",
		"12":       "12",
		" 12.50 ":  "12.5",
		"1,234.56": "1234.56",
		"₹ 1,000":  "1000",
		"-3":       "-3",
		"1e2":      "100",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAmount(in).String(), "ParseAmount(%q)", in)
	}
}

func TestBuildLine_DiscountOnlyOnInvoices(t *testing.T) {
	in := LineInput{Quantity: "10", UnitPrice: "100", Discount: "50"}

	invoice := BuildLine(KindInvoice, in)
	assert.Equal(t, "950.00", invoice.TaxableValue.StringFixed(2))

	for _, kind := range []DocumentKind{KindGRN, KindBOM} {
		line := BuildLine(kind, in)
		assert.True(t, line.Discount.IsZero(), "%s discount", kind)
		assert.Equal(t, "1000.00", line.TaxableValue.StringFixed(2), "%s taxable", kind)
	}
}

func TestBuildLines_Numbering(t *testing.T) {
	lines := BuildLines(KindGRN, []LineInput{{Quantity: "1"}, {Quantity: "2"}, {Quantity: "3"}})
	for i, l := range lines {
		assert.Equal(t, i+1, l.LineNumber)
	}
}

func TestSplitGST(t *testing.T) {
	c, s, i := SplitGST(d("18"), false)
	assert.Equal(t, "9", c.String())
	assert.Equal(t, "9", s.String())
	assert.True(t, i.IsZero())

	c, s, i = SplitGST(d("5"), true)
	assert.True(t, c.IsZero())
	assert.True(t, s.IsZero())
	assert.Equal(t, "5", i.String())
}
