package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineList_RowIdentitySurvivesRemoveAndMove(t *testing.T) {
	l := NewLineList(KindGRN, false)
	a := l.AddInput(LineInput{ProductCode: "A", Quantity: "1", UnitPrice: "10"})
	b := l.AddInput(LineInput{ProductCode: "B", Quantity: "2", UnitPrice: "10"})
	c := l.AddInput(LineInput{ProductCode: "C", Quantity: "3", UnitPrice: "10"})

	require.NoError(t, l.Remove(a))
	require.NoError(t, l.Update(c, func(in *LineInput) { in.Quantity = "4" }))

	row, ok := l.Row(c)
	require.True(t, ok)
	assert.Equal(t, "C", row.ProductCode)
	assert.Equal(t, "40.00", row.TaxableValue.StringFixed(2))
	assert.Equal(t, 2, row.LineNumber)

	require.NoError(t, l.Move(c, 0))
	lines := l.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, c, lines[0].RowID)
	assert.Equal(t, b, lines[1].RowID)
	assert.Equal(t, 1, lines[0].LineNumber)
}

func TestLineList_UnknownRow(t *testing.T) {
	l := NewLineList(KindGRN, false)
	assert.True(t, errors.Is(l.Remove("missing"), ErrNotFound))
	assert.True(t, errors.Is(l.Move("missing", 0), ErrNotFound))
	assert.True(t, errors.Is(l.Update("missing", func(*LineInput) {}), ErrNotFound))
	_, ok := l.Row("missing")
	assert.False(t, ok)
}

func TestLineList_TotalsFollowEdits(t *testing.T) {
	l := NewLineList(KindGRN, false)
	assert.Equal(t, "0.00", l.Totals().GrandTotal.StringFixed(2))

	id := l.AddInput(LineInput{Quantity: "2", UnitPrice: "100", CGSTPercent: "9", SGSTPercent: "9"})
	assert.Equal(t, "236.00", l.Totals().GrandTotal.StringFixed(2))

	l.AddInput(LineInput{Quantity: "2", UnitPrice: "100", CGSTPercent: "9", SGSTPercent: "9"})
	assert.Equal(t, "472.00", l.Totals().GrandTotal.StringFixed(2))

	require.NoError(t, l.Remove(id))
	assert.Equal(t, "236.00", l.Totals().GrandTotal.StringFixed(2))
}

func TestLineList_SelectProduct(t *testing.T) {
	p := Product{ID: 7, Code: "STL-10", Name: "Steel rod 10mm", UnitPrice: d("52.5"), Unit: "kg", HSNCode: "7214", GSTRate: d("18")}

	intra := NewLineList(KindGRN, false)
	id := intra.AddInput(LineInput{Quantity: "10"})
	require.NoError(t, intra.SelectProduct(id, p))
	row, _ := intra.Row(id)
	assert.Equal(t, 7, row.ProductID)
	assert.Equal(t, "Steel rod 10mm", row.Description)
	assert.Equal(t, "kg", row.UOM)
	assert.Equal(t, "9", row.CGSTPercent.String())
	assert.Equal(t, "9", row.SGSTPercent.String())
	assert.Equal(t, "525.00", row.TaxableValue.StringFixed(2))
	assert.Equal(t, "619.50", row.LineTotal.StringFixed(2))

	inter := NewLineList(KindGRN, true)
	id = inter.AddInput(LineInput{Quantity: "1", Description: "custom"})
	require.NoError(t, inter.SelectProduct(id, p))
	row, _ = inter.Row(id)
	assert.Equal(t, "custom", row.Description)
	assert.Equal(t, "18", row.IGSTPercent.String())
	assert.True(t, row.CGSTPercent.IsZero())
}

func TestLineList_ResetAssignsFreshRowIDs(t *testing.T) {
	l := NewLineList(KindBOM, false)
	old := l.Add()

	items := BuildLines(KindBOM, []LineInput{{UOM: "kg", Quantity: "5"}, {UOM: "pcs", Quantity: "3"}})
	l.Reset(items)

	assert.Equal(t, 2, l.Len())
	_, ok := l.Row(old)
	assert.False(t, ok)
	assert.Equal(t, "5 kg, 3 pcs", FormatRollup(l.Rollup()))
}

func TestLineList_SnapshotRestore(t *testing.T) {
	l := NewLineList(KindGRN, false)
	id := l.AddInput(LineInput{Quantity: "1", UnitPrice: "10"})
	snap := l.snapshot()

	require.NoError(t, l.Update(id, func(in *LineInput) { in.Quantity = "99" }))
	l.Add()
	l.restore(snap)

	require.Equal(t, 1, l.Len())
	row, ok := l.Row(id)
	require.True(t, ok)
	assert.Equal(t, "1", row.Quantity.String())
}
