package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is product/component master data. Selecting it on a line copies the
// default unit price, unit, HSN code and GST rate into that line.
type Product struct {
	ID          int             `json:"id"`
	CompanyID   int             `json:"company_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	HSNCode     string          `json:"hsn_code"`
	GSTRate     decimal.Decimal `json:"gst_rate"` // total GST %, split into CGST/SGST or IGST per document
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductService provides product master data operations.
type ProductService interface {
	ProductCatalog

	// GetProducts returns all active products for a company, ordered by code.
	GetProducts(ctx context.Context, companyID int) ([]Product, error)

	// GetProductByID returns a product by primary key, scoped to the company.
	GetProductByID(ctx context.Context, companyID, productID int) (*Product, error)
}
