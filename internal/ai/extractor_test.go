package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFor_StrictShape(t *testing.T) {
	schema, err := schemaFor(ExtractedDocument{})
	require.NoError(t, err)

	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []any{"reference_no", "vendor_name", "document_date", "lines"}, schema["required"])

	props := schema["properties"].(map[string]any)
	lines := props["lines"].(map[string]any)
	items := lines["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.Len(t, items["required"], 8)
}

func TestExtractedDocument_LineInputs(t *testing.T) {
	doc := ExtractedDocument{Lines: []ExtractedLine{
		{ProductCode: " STL-10 ", Quantity: "10", UnitPrice: "52.50", Discount: "0", GSTPercent: "18", UOM: "kg"},
		{Description: "Freight", Quantity: "1", UnitPrice: "500", GSTPercent: "oops"},
	}}

	intra := doc.LineInputs(false)
	require.Len(t, intra, 2)
	assert.Equal(t, "STL-10", intra[0].ProductCode)
	assert.Equal(t, "9", intra[0].CGSTPercent)
	assert.Equal(t, "9", intra[0].SGSTPercent)
	assert.Equal(t, "0", intra[0].IGSTPercent)
	assert.Equal(t, "0", intra[1].CGSTPercent)

	inter := doc.LineInputs(true)
	assert.Equal(t, "18", inter[0].IGSTPercent)
	assert.Equal(t, "0", inter[0].CGSTPercent)
}
