package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineList owns the editable rows of one document. Rows are addressed by a stable
// row id, never by position, so an id stays valid when other rows are removed or moved.
// Totals are not stored; every read recomputes them from the current rows.
type LineList struct {
	kind       DocumentKind
	interState bool
	order      []string
	rows       map[string]*LineInput
}

// NewLineList creates an empty list for a document kind.
func NewLineList(kind DocumentKind, interState bool) *LineList {
	return &LineList{kind: kind, interState: interState, rows: make(map[string]*LineInput)}
}

// Kind returns the document kind the list computes for.
func (l *LineList) Kind() DocumentKind { return l.kind }

// SetInterState changes how product GST rates are split on later product selections.
func (l *LineList) SetInterState(v bool) { l.interState = v }

// Len returns the number of rows.
func (l *LineList) Len() int { return len(l.order) }

// Add appends a zeroed row and returns its id.
func (l *LineList) Add() string {
	return l.AddInput(LineInput{})
}

// AddInput appends a row with the given values and returns its id.
func (l *LineList) AddInput(in LineInput) string {
	id := uuid.NewString()
	row := in
	l.rows[id] = &row
	l.order = append(l.order, id)
	return id
}

// Update applies fn to the row in place.
func (l *LineList) Update(rowID string, fn func(*LineInput)) error {
	row, ok := l.rows[rowID]
	if !ok {
		return fmt.Errorf("row %s: %w", rowID, ErrNotFound)
	}
	fn(row)
	return nil
}

// Remove deletes a row. The ids of the remaining rows are unchanged.
func (l *LineList) Remove(rowID string) error {
	if _, ok := l.rows[rowID]; !ok {
		return fmt.Errorf("row %s: %w", rowID, ErrNotFound)
	}
	delete(l.rows, rowID)
	for i, id := range l.order {
		if id == rowID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

// Move repositions a row to index (clamped to the list bounds).
func (l *LineList) Move(rowID string, index int) error {
	from := -1
	for i, id := range l.order {
		if id == rowID {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("row %s: %w", rowID, ErrNotFound)
	}
	l.order = append(l.order[:from], l.order[from+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(l.order) {
		index = len(l.order)
	}
	l.order = append(l.order[:index], append([]string{rowID}, l.order[index:]...)...)
	return nil
}

// SelectProduct sets the row's product and overwrites unit price, unit, HSN code and
// tax percentages from the product's master data.
func (l *LineList) SelectProduct(rowID string, p Product) error {
	cgst, sgst, igst := SplitGST(p.GSTRate, l.interState)
	return l.Update(rowID, func(in *LineInput) {
		in.ProductID = p.ID
		in.ProductCode = p.Code
		if in.Description == "" {
			in.Description = p.Name
		}
		in.UnitPrice = p.UnitPrice.StringFixed(2)
		in.UOM = p.Unit
		in.HSNCode = p.HSNCode
		in.CGSTPercent = cgst.String()
		in.SGSTPercent = sgst.String()
		in.IGSTPercent = igst.String()
	})
}

// Row returns the computed line for rowID.
func (l *LineList) Row(rowID string) (LineItem, bool) {
	for i, id := range l.order {
		if id == rowID {
			item := BuildLine(l.kind, *l.rows[id])
			item.RowID = id
			item.LineNumber = i + 1
			return item, true
		}
	}
	return LineItem{}, false
}

// Inputs returns a copy of the raw rows in display order.
func (l *LineList) Inputs() []LineInput {
	out := make([]LineInput, len(l.order))
	for i, id := range l.order {
		out[i] = *l.rows[id]
	}
	return out
}

// Lines returns every row computed, in display order.
func (l *LineList) Lines() []LineItem {
	out := make([]LineItem, len(l.order))
	for i, id := range l.order {
		out[i] = BuildLine(l.kind, *l.rows[id])
		out[i].RowID = id
		out[i].LineNumber = i + 1
	}
	return out
}

// Totals recomputes the document totals from the current rows.
func (l *LineList) Totals() DocumentTotals {
	return Aggregate(l.Lines())
}

// Rollup recomputes the quantity-per-unit summary from the current rows.
func (l *LineList) Rollup() map[string]decimal.Decimal {
	return RollupUnits(l.Lines())
}

// Reset replaces every row with the given lines. Each line gets a fresh row id.
func (l *LineList) Reset(lines []LineItem) {
	l.order = l.order[:0]
	l.rows = make(map[string]*LineInput, len(lines))
	for _, line := range lines {
		l.AddInput(line.Input())
	}
}

// snapshot captures the rows so they can be restored after a failed remote call.
type lineSnapshot struct {
	order []string
	rows  map[string]LineInput
}

func (l *LineList) snapshot() lineSnapshot {
	s := lineSnapshot{order: append([]string(nil), l.order...), rows: make(map[string]LineInput, len(l.rows))}
	for id, row := range l.rows {
		s.rows[id] = *row
	}
	return s
}

func (l *LineList) restore(s lineSnapshot) {
	l.order = append(l.order[:0], s.order...)
	l.rows = make(map[string]*LineInput, len(s.rows))
	for id, row := range s.rows {
		r := row
		l.rows[id] = &r
	}
}
