package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownUnit is the rollup key for lines without a unit of measure.
const UnknownUnit = "N/A"

// RollupUnits groups lines by unit of measure and sums their quantities.
// It is independent of the monetary totals.
func RollupUnits(lines []LineItem) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, l := range lines {
		unit := strings.TrimSpace(l.UOM)
		if unit == "" {
			unit = UnknownUnit
		}
		out[unit] = out[unit].Add(l.Quantity)
	}
	return out
}

// FormatRollup renders a rollup as "15 kg, 3 pcs", units sorted by name.
func FormatRollup(rollup map[string]decimal.Decimal) string {
	units := make([]string, 0, len(rollup))
	for u := range rollup {
		units = append(units, u)
	}
	sort.Strings(units)

	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, rollup[u].String()+" "+u)
	}
	return strings.Join(parts, ", ")
}
