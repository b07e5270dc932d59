package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGRNHeader() DocumentHeader {
	return DocumentHeader{
		CompanyID:    1,
		Kind:         KindGRN,
		ReferenceNo:  "DC-1001",
		VendorCode:   "V001",
		LocationCode: "WH1",
		DocumentDate: "2026-05-04",
	}
}

func validLine() LineInput {
	return LineInput{ProductCode: "P001", Quantity: "2", UnitPrice: "100", CGSTPercent: "9", SGSTPercent: "9", IGSTPercent: "0"}
}

func TestValidateForSubmit_Valid(t *testing.T) {
	lines := BuildLines(KindGRN, []LineInput{validLine()})
	assert.NoError(t, ValidateForSubmit(validGRNHeader(), lines))
}

func TestValidateForSubmit_SerialNumberMismatch(t *testing.T) {
	in := validLine()
	in.Quantity = "3"
	in.IsSerialNumberApplicable = true
	in.SerialNumbers = "A1,A2"

	err := ValidateForSubmit(validGRNHeader(), BuildLines(KindGRN, []LineInput{in}))
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected *ValidationError, got %v", err)
	require.Len(t, ve.Messages, 1)
	assert.Contains(t, ve.Messages[0], "2")
	assert.Contains(t, ve.Messages[0], "3")
	assert.Contains(t, ve.Messages[0], "Row 1")
}

func TestValidateForSubmit_SerialNumbersMatch(t *testing.T) {
	in := validLine()
	in.Quantity = "3"
	in.IsSerialNumberApplicable = true
	in.SerialNumbers = "A1, A2 ,A3,"

	assert.NoError(t, ValidateForSubmit(validGRNHeader(), BuildLines(KindGRN, []LineInput{in})))
}

func TestValidateForSubmit_NegativeInputsNameRow(t *testing.T) {
	good := validLine()
	negQty := validLine()
	negQty.Quantity = "-1"
	negPrice := validLine()
	negPrice.UnitPrice = "-5"

	err := ValidateForSubmit(validGRNHeader(), BuildLines(KindGRN, []LineInput{good, negQty, negPrice}))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{
		"Row 2: quantity must not be negative",
		"Row 3: unit price must not be negative",
	}, ve.Messages)
}

func TestValidateForSubmit_DiscountExceedsAmount(t *testing.T) {
	h := DocumentHeader{Kind: KindInvoice, ReferenceNo: "INV-9", VendorCode: "V001", DocumentDate: "2026-05-04"}
	over := validLine()
	over.Discount = "500"

	err := ValidateForSubmit(h, BuildLines(KindInvoice, []LineInput{validLine(), over}))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Messages, "Row 2: taxable value must not be negative (discount exceeds amount)")
}

func TestValidateForSubmit_InvoiceGrandTotalMustBePositive(t *testing.T) {
	h := DocumentHeader{Kind: KindInvoice, ReferenceNo: "INV-9", VendorCode: "V001", DocumentDate: "2026-05-04"}
	zero := validLine()
	zero.UnitPrice = "0"

	err := ValidateForSubmit(h, BuildLines(KindInvoice, []LineInput{zero}))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Grand total must be greater than zero"}, ve.Messages)
}

func TestValidateForSubmit_Header(t *testing.T) {
	tests := []struct {
		name   string
		header DocumentHeader
		want   []string
	}{
		{
			name:   "grn missing everything",
			header: DocumentHeader{Kind: KindGRN},
			want: []string{
				"Document number is required",
				"Vendor is required",
				"Location is required",
				"Document date is required",
			},
		},
		{
			name:   "invoice bad date",
			header: DocumentHeader{Kind: KindInvoice, ReferenceNo: "X", VendorCode: "V", DocumentDate: "04/05/2026"},
			want:   []string{"Document date must be a date in YYYY-MM-DD format"},
		},
		{
			name:   "bom without product",
			header: DocumentHeader{Kind: KindBOM, ReferenceNo: "BOM-1", DocumentDate: "2026-05-04"},
			want:   []string{"BOM product is required"},
		},
		{
			name:   "unknown kind",
			header: DocumentHeader{Kind: "QUOTE"},
			want:   []string{`Unknown document kind "QUOTE"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := BuildLines(tt.header.Kind, []LineInput{validLine()})
			err := ValidateForSubmit(tt.header, lines)
			ve, ok := AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, ve.Messages)
		})
	}
}

func TestValidateForSubmit_NoLines(t *testing.T) {
	err := ValidateForSubmit(validGRNHeader(), nil)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"At least one line item is required"}, ve.Messages)
}

func TestValidateForSubmit_MissingProduct(t *testing.T) {
	in := validLine()
	in.ProductCode = ""
	err := ValidateForSubmit(validGRNHeader(), BuildLines(KindGRN, []LineInput{in}))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Row 1: product is required"}, ve.Messages)
}

func TestCountSerialNumbers(t *testing.T) {
	assert.Equal(t, 0, CountSerialNumbers(""))
	assert.Equal(t, 0, CountSerialNumbers(" , ,"))
	assert.Equal(t, 2, CountSerialNumbers("A1,A2"))
	assert.Equal(t, 2, CountSerialNumbers("A1,A1,A2"))
}
