package app

import (
	"context"
	"errors"

	"backoffice/internal/core"
)

// ErrAINotConfigured is returned by ExtractLineItems when no OpenAI key is set.
var ErrAINotConfigured = errors.New("line extraction is not configured (OPENAI_API_KEY unset)")

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// LoadDefaultCompany loads the active company. Uses the configured company code if
	// set; otherwise expects exactly one company in the database.
	LoadDefaultCompany(ctx context.Context) (*core.Company, error)

	// ComputeDocument recomputes lines, totals and the unit rollup without persisting.
	ComputeDocument(ctx context.Context, req DocumentRequest) (*ComputeResult, error)

	// ValidateDocument computes the document and runs the submit gate. A failing gate
	// returns *core.ValidationError alongside the computed result.
	ValidateDocument(ctx context.Context, req DocumentRequest) (*ComputeResult, error)

	// SaveDocument validates and persists a GRN, invoice or BOM as DRAFT.
	SaveDocument(ctx context.Context, req DocumentRequest) (*core.SaveAck, error)

	// GetDocument returns a saved document with its lines and totals.
	GetDocument(ctx context.Context, companyCode string, documentID int) (*core.Document, error)

	// ListDocuments returns documents of a company, filtered by kind and status when set.
	ListDocuments(ctx context.Context, companyCode, kind, status string) (*DocumentListResult, error)

	// PostDocument posts a DRAFT document, assigning its gapless number.
	PostDocument(ctx context.Context, companyCode string, documentID int) (*core.DocumentHeader, error)

	// LinkedItems returns the computed lines a dependent document is seeded with.
	LinkedItems(ctx context.Context, companyCode string, kind core.DocumentKind, parentID int) (*ComputeResult, error)

	// ReconcileDocuments recomputes every stored document and reports mismatches.
	ReconcileDocuments(ctx context.Context, companyCode string) (*ReconcileResult, error)

	// OpenForm starts an interactive editing session for a new document of the given kind.
	OpenForm(ctx context.Context, companyCode string, kind core.DocumentKind, notify core.Notifier, loader core.Loader) (*core.FormSession, error)

	// LookupProduct resolves a code or name prefix to a product.
	LookupProduct(ctx context.Context, companyCode, query string) (*core.Product, error)

	// ListProducts returns all active products for a company.
	ListProducts(ctx context.Context, companyCode string) (*ProductListResult, error)

	// ListVendors returns all active vendors for a company.
	ListVendors(ctx context.Context, companyCode string) (*VendorsResult, error)

	// GetVendor returns one vendor by code.
	GetVendor(ctx context.Context, companyCode, vendorCode string) (*VendorResult, error)

	// CreateVendor creates a new vendor record for the given company.
	CreateVendor(ctx context.Context, req CreateVendorRequest) (*VendorResult, error)

	// GetPurchaseOrder returns a single purchase order by its internal ID.
	GetPurchaseOrder(ctx context.Context, companyCode string, poID int) (*PurchaseOrderResult, error)

	// ListPurchaseOrders returns purchase orders for a company, optionally filtered by status.
	ListPurchaseOrders(ctx context.Context, companyCode, status string) (*PurchaseOrdersResult, error)

	// CreatePurchaseOrder creates a new DRAFT purchase order.
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// ApprovePurchaseOrder transitions a DRAFT PO to APPROVED, assigning a gapless PO number.
	ApprovePurchaseOrder(ctx context.Context, companyCode string, poID int) (*PurchaseOrderResult, error)

	// ExtractLineItems reads line items from pasted document text using the AI extractor
	// and returns them computed. Returns ErrAINotConfigured without an API key.
	ExtractLineItems(ctx context.Context, req ExtractRequest) (*ExtractResult, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
}
