package app

import (
	"backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// DocumentRequest carries a GRN, invoice or BOM as entered: header plus raw rows.
type DocumentRequest struct {
	CompanyCode string              `json:"-"`
	Header      core.DocumentHeader `json:"header"`
	Lines       []core.LineInput    `json:"lines"`
}

// CreateVendorRequest is the input for creating a new vendor.
type CreateVendorRequest struct {
	CompanyCode      string `json:"-"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	GSTIN            string `json:"gstin"`
	ContactPerson    string `json:"contact_person"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// CreatePurchaseOrderRequest is the input for creating a new purchase order.
type CreatePurchaseOrderRequest struct {
	CompanyCode string        `json:"-"`
	VendorCode  string        `json:"vendor_code"`
	PODate      string        `json:"po_date"` // YYYY-MM-DD, today when empty
	Notes       string        `json:"notes"`
	Lines       []POLineInput `json:"lines"`
}

// POLineInput is a single line within a CreatePurchaseOrderRequest.
type POLineInput struct {
	ProductCode string           `json:"product_code"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    decimal.Decimal  `json:"unit_cost"` // zero means "use product default"
	GSTRate     *decimal.Decimal `json:"gst_rate,omitempty"`
}

// ExtractRequest asks the AI extractor to read line items from document text.
type ExtractRequest struct {
	CompanyCode string            `json:"-"`
	Kind        core.DocumentKind `json:"kind"`
	VendorCode  string            `json:"vendor_code"`
	Text        string            `json:"text"`
}
