package app

import (
	"backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// ComputeResult is a document recomputed from its raw rows.
type ComputeResult struct {
	Lines      []core.LineItem            `json:"lines"`
	Totals     core.DocumentTotals        `json:"totals"`
	Rollup     map[string]decimal.Decimal `json:"unit_rollup"`
	RollupText string                     `json:"unit_rollup_text"`
	Reconciles bool                       `json:"reconciles"`
}

// DocumentListResult is returned by ListDocuments.
type DocumentListResult struct {
	Documents   []core.DocumentSummary `json:"documents"`
	CompanyCode string                 `json:"company_code"`
}

// ReconcileResult is returned by ReconcileDocuments.
type ReconcileResult struct {
	CompanyCode string                `json:"company_code"`
	Issues      []core.ReconcileIssue `json:"issues"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// VendorsResult is returned by ListVendors.
type VendorsResult struct {
	Vendors []core.Vendor `json:"vendors"`
}

// VendorResult is returned by vendor lookups and CreateVendor.
type VendorResult struct {
	Vendor *core.Vendor `json:"vendor"`
}

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	PurchaseOrder *core.PurchaseOrder `json:"purchase_order"`
}

// PurchaseOrdersResult is returned by ListPurchaseOrders.
type PurchaseOrdersResult struct {
	PurchaseOrders []core.PurchaseOrder `json:"purchase_orders"`
}

// ExtractResult is returned by ExtractLineItems. Unresolved lists rows whose product
// code did not match the catalog.
type ExtractResult struct {
	ReferenceNo  string           `json:"reference_no"`
	VendorName   string           `json:"vendor_name"`
	DocumentDate string           `json:"document_date"`
	Inputs       []core.LineInput `json:"inputs"`
	Computed     *ComputeResult   `json:"computed"`
	Unresolved   []int            `json:"unresolved_rows,omitempty"`
}

// UserSession is returned by a successful AuthenticateUser.
type UserSession struct {
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	CompanyID   int    `json:"company_id"`
	CompanyCode string `json:"company_code"`
}

// UserResult is returned by GetUser.
type UserResult struct {
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
}
