package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies which purchasing document a set of lines belongs to.
type DocumentKind string

const (
	KindGRN     DocumentKind = "GRN"
	KindInvoice DocumentKind = "INVOICE"
	KindBOM     DocumentKind = "BOM"
)

// TypeCode maps a document kind to the document-type code used for numbering.
func (k DocumentKind) TypeCode() string {
	switch k {
	case KindGRN:
		return "GR"
	case KindInvoice:
		return "PI"
	case KindBOM:
		return "BM"
	}
	return ""
}

// Valid reports whether k is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	return k.TypeCode() != ""
}

// AllowsDiscount reports whether lines of this kind may carry a discount.
// Only invoices do; GRN and BOM lines are always computed with a zero discount.
func (k DocumentKind) AllowsDiscount() bool {
	return k == KindInvoice
}

// LineInput is one editable row as typed by a user: every numeric field is free text.
// Unparsable values are treated as zero when the line is computed.
type LineInput struct {
	ProductID                int    `json:"product_id"`
	ProductCode              string `json:"product_code,omitempty"`
	Description              string `json:"description,omitempty"`
	UOM                      string `json:"uom,omitempty"`
	HSNCode                  string `json:"hsn_code,omitempty"`
	Quantity                 string `json:"quantity"`
	OrderedQuantity          string `json:"ordered_quantity,omitempty"`
	UnitPrice                string `json:"unit_price"`
	Discount                 string `json:"discount,omitempty"`
	CGSTPercent              string `json:"cgst_percent"`
	SGSTPercent              string `json:"sgst_percent"`
	IGSTPercent              string `json:"igst_percent"`
	IsSerialNumberApplicable bool   `json:"is_serial_number_applicable,omitempty"`
	SerialNumbers            string `json:"serial_numbers,omitempty"`
	BatchNumber              string `json:"batch_number,omitempty"`
	SourceLineID             *int   `json:"source_line_id,omitempty"` // PO or GRN line this row was seeded from
}

// LineAmounts is the output of ComputeLine. Every field is rounded to 2 decimal places.
type LineAmounts struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGSTAmount   decimal.Decimal `json:"cgst_amount"`
	SGSTAmount   decimal.Decimal `json:"sgst_amount"`
	IGSTAmount   decimal.Decimal `json:"igst_amount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// LineItem is a computed row: the parsed inputs plus the derived amounts.
type LineItem struct {
	RowID                    string          `json:"row_id"`
	LineNumber               int             `json:"line_number"`
	ProductID                int             `json:"product_id"`
	ProductCode              string          `json:"product_code,omitempty"`
	Description              string          `json:"description,omitempty"`
	UOM                      string          `json:"uom,omitempty"`
	HSNCode                  string          `json:"hsn_code,omitempty"`
	Quantity                 decimal.Decimal `json:"quantity"`
	OrderedQuantity          decimal.Decimal `json:"ordered_quantity"`
	UnitPrice                decimal.Decimal `json:"unit_price"`
	Discount                 decimal.Decimal `json:"discount"`
	CGSTPercent              decimal.Decimal `json:"cgst_percent"`
	SGSTPercent              decimal.Decimal `json:"sgst_percent"`
	IGSTPercent              decimal.Decimal `json:"igst_percent"`
	IsSerialNumberApplicable bool            `json:"is_serial_number_applicable"`
	SerialNumbers            string          `json:"serial_numbers,omitempty"`
	BatchNumber              string          `json:"batch_number,omitempty"`
	SourceLineID             *int            `json:"source_line_id,omitempty"`
	LineAmounts
}

// Input converts a computed line back into its editable form.
func (l LineItem) Input() LineInput {
	return LineInput{
		ProductID:                l.ProductID,
		ProductCode:              l.ProductCode,
		Description:              l.Description,
		UOM:                      l.UOM,
		HSNCode:                  l.HSNCode,
		Quantity:                 l.Quantity.String(),
		OrderedQuantity:          l.OrderedQuantity.String(),
		UnitPrice:                l.UnitPrice.String(),
		Discount:                 l.Discount.String(),
		CGSTPercent:              l.CGSTPercent.String(),
		SGSTPercent:              l.SGSTPercent.String(),
		IGSTPercent:              l.IGSTPercent.String(),
		IsSerialNumberApplicable: l.IsSerialNumberApplicable,
		SerialNumbers:            l.SerialNumbers,
		BatchNumber:              l.BatchNumber,
		SourceLineID:             l.SourceLineID,
	}
}

// DocumentTotals aggregates the rounded per-line amounts of one document.
type DocumentTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	CGSTTotal  decimal.Decimal `json:"cgst_total"`
	SGSTTotal  decimal.Decimal `json:"sgst_total"`
	IGSTTotal  decimal.Decimal `json:"igst_total"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// DocumentHeader holds the identifying fields of a GRN, invoice or BOM.
// Which fields are required depends on Kind; see ValidateForSubmit.
type DocumentHeader struct {
	ID             int            `json:"id,omitempty"`
	CompanyID      int            `json:"company_id"`
	Kind           DocumentKind   `json:"kind"`
	Status         DocumentStatus `json:"status,omitempty"`
	ReferenceNo    string         `json:"reference_no"`              // vendor invoice no., delivery challan no., BOM code
	DocumentNumber *string        `json:"document_number,omitempty"` // gapless number assigned on posting
	VendorCode     string         `json:"vendor_code,omitempty"`
	LocationCode   string         `json:"location_code,omitempty"`
	DocumentDate   string         `json:"document_date"` // YYYY-MM-DD
	ParentID       *int           `json:"parent_id,omitempty"`
	BOMProductID   *int           `json:"bom_product_id,omitempty"`
	InterState     bool           `json:"inter_state"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
	PostedAt       *time.Time     `json:"posted_at,omitempty"`
}

// Document is a header with its computed lines and totals.
type Document struct {
	Header DocumentHeader             `json:"header"`
	Lines  []LineItem                 `json:"lines"`
	Totals DocumentTotals             `json:"totals"`
	Rollup map[string]decimal.Decimal `json:"unit_rollup,omitempty"`
}

// SaveAck is returned by a successful SaveDocument.
type SaveAck struct {
	DocumentID int            `json:"document_id"`
	Status     DocumentStatus `json:"status"`
	Totals     DocumentTotals `json:"totals"`
	LineCount  int            `json:"line_count"`
}

// DocumentStore is the persistence boundary the form session depends on.
type DocumentStore interface {
	// FetchLinkedItems seeds lines for a dependent document: a GRN from purchase order
	// lines, an invoice from a posted GRN's lines.
	FetchLinkedItems(ctx context.Context, companyID int, kind DocumentKind, parentID int) ([]LineItem, error)

	// FetchExistingDocument returns a saved document with its computed lines and totals.
	FetchExistingDocument(ctx context.Context, companyID, documentID int) (*Document, error)

	// SaveDocument recomputes and validates the lines, then persists the header, lines
	// and totals. A validation failure is returned as *ValidationError and nothing is written.
	SaveDocument(ctx context.Context, header DocumentHeader, lines []LineInput) (*SaveAck, error)
}

// ProductCatalog supplies product master data for line defaults.
type ProductCatalog interface {
	LookupProduct(ctx context.Context, companyID int, query string) (*Product, error)
}
