package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order statuses. Goods receipts can only be raised against APPROVED orders.
const (
	POStatusDraft     = "DRAFT"
	POStatusApproved  = "APPROVED"
	POStatusCancelled = "CANCELLED"
)

// PurchaseOrder represents a purchase order header.
type PurchaseOrder struct {
	ID                   int                 `json:"id"`
	CompanyID            int                 `json:"company_id"`
	VendorID             int                 `json:"vendor_id"`
	VendorCode           string              `json:"vendor_code"`
	VendorName           string              `json:"vendor_name"`
	PONumber             *string             `json:"po_number,omitempty"`
	Status               string              `json:"status"`
	PODate               string              `json:"po_date"` // YYYY-MM-DD
	ExpectedDeliveryDate *string             `json:"expected_delivery_date,omitempty"`
	InterState           bool                `json:"inter_state"`
	Totals               DocumentTotals      `json:"totals"`
	Notes                *string             `json:"notes,omitempty"`
	ApprovedAt           *time.Time          `json:"approved_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	Lines                []PurchaseOrderLine `json:"lines,omitempty"`
}

// PurchaseOrderLine represents a single line on a purchase order. Tax amounts follow the
// same per-line computation as GRN lines.
type PurchaseOrderLine struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	LineNumber  int             `json:"line_number"`
	ProductID   int             `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	UOM         string          `json:"uom"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	CGSTPercent decimal.Decimal `json:"cgst_percent"`
	SGSTPercent decimal.Decimal `json:"sgst_percent"`
	IGSTPercent decimal.Decimal `json:"igst_percent"`
	LineAmounts
}

// PurchaseOrderLineInput holds the fields required to create a purchase order line.
// A zero UnitCost takes the product's list price; a nil GSTRate takes the product's rate.
type PurchaseOrderLineInput struct {
	ProductCode string           `json:"product_code" validate:"required"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    decimal.Decimal  `json:"unit_cost"`
	GSTRate     *decimal.Decimal `json:"gst_rate,omitempty"`
}

// PurchaseOrderService provides purchase order lifecycle operations.
type PurchaseOrderService interface {
	// CreatePO creates a new DRAFT purchase order with computed line amounts and totals.
	// The GST split (CGST+SGST or IGST) follows the vendor's state against the company's.
	CreatePO(ctx context.Context, companyID int, vendorCode string, poDate time.Time, lines []PurchaseOrderLineInput, notes string) (*PurchaseOrder, error)

	// ApprovePO transitions a DRAFT PO to APPROVED, assigning a gapless PO number.
	// It is idempotent: approving an already-APPROVED PO is a no-op.
	ApprovePO(ctx context.Context, companyID, poID int) (*PurchaseOrder, error)

	// GetPO returns a purchase order of the company, including all lines.
	GetPO(ctx context.Context, companyID, poID int) (*PurchaseOrder, error)

	// GetPOs returns purchase orders for a company, optionally filtered by status.
	// An empty status string returns all orders.
	GetPOs(ctx context.Context, companyID int, status string) ([]PurchaseOrder, error)
}
