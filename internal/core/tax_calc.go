package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a free-text numeric field. Blank, "null" and unparsable input
// yield zero; it never fails. Thousands separators and a leading ₹ are tolerated.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine derives the taxable value, the three GST amounts and the line total.
//
// Every derived value is rounded to 2 places on its own before it is used further, so
// document totals built from these lines reconcile to the cent with what was displayed
// per line. A discount larger than quantity×price produces a negative taxable value;
// it is not clamped here, the validation gate rejects it at submit time.
func ComputeLine(quantity, unitPrice, discount, cgstPct, sgstPct, igstPct decimal.Decimal) LineAmounts {
	taxable := round2(quantity.Mul(unitPrice).Sub(discount))
	cgst := round2(taxable.Mul(cgstPct).Div(hundred))
	sgst := round2(taxable.Mul(sgstPct).Div(hundred))
	igst := round2(taxable.Mul(igstPct).Div(hundred))
	return LineAmounts{
		TaxableValue: taxable,
		CGSTAmount:   cgst,
		SGSTAmount:   sgst,
		IGSTAmount:   igst,
		LineTotal:    round2(taxable.Add(cgst).Add(sgst).Add(igst)),
	}
}

// BuildLine parses a LineInput and computes it for the given document kind.
// Discounts are ignored for kinds that do not allow them.
func BuildLine(kind DocumentKind, in LineInput) LineItem {
	item := LineItem{
		ProductID:                in.ProductID,
		ProductCode:              strings.TrimSpace(in.ProductCode),
		Description:              strings.TrimSpace(in.Description),
		UOM:                      strings.TrimSpace(in.UOM),
		HSNCode:                  strings.TrimSpace(in.HSNCode),
		Quantity:                 ParseAmount(in.Quantity),
		OrderedQuantity:          ParseAmount(in.OrderedQuantity),
		UnitPrice:                ParseAmount(in.UnitPrice),
		CGSTPercent:              ParseAmount(in.CGSTPercent),
		SGSTPercent:              ParseAmount(in.SGSTPercent),
		IGSTPercent:              ParseAmount(in.IGSTPercent),
		IsSerialNumberApplicable: in.IsSerialNumberApplicable,
		SerialNumbers:            in.SerialNumbers,
		BatchNumber:              strings.TrimSpace(in.BatchNumber),
		SourceLineID:             in.SourceLineID,
	}
	if kind.AllowsDiscount() {
		item.Discount = ParseAmount(in.Discount)
	}
	item.LineAmounts = ComputeLine(item.Quantity, item.UnitPrice, item.Discount,
		item.CGSTPercent, item.SGSTPercent, item.IGSTPercent)
	return item
}

// BuildLines computes every input and numbers the lines from 1.
func BuildLines(kind DocumentKind, inputs []LineInput) []LineItem {
	lines := make([]LineItem, len(inputs))
	for i, in := range inputs {
		lines[i] = BuildLine(kind, in)
		lines[i].LineNumber = i + 1
	}
	return lines
}

// SplitGST splits a product's single GST rate into the three buckets: IGST for an
// inter-state supply, half CGST and half SGST otherwise.
func SplitGST(rate decimal.Decimal, interState bool) (cgst, sgst, igst decimal.Decimal) {
	if interState {
		return decimal.Zero, decimal.Zero, rate
	}
	half := rate.Div(decimal.NewFromInt(2))
	return half, half, decimal.Zero
}
