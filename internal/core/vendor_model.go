package core

import (
	"context"
	"time"
)

// Vendor is a supplier: the party on GRNs and purchase invoices. Its GST state code,
// compared with the company's, decides whether a document is intra- or inter-state.
type Vendor struct {
	ID               int       `json:"id"`
	CompanyID        int       `json:"company_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	GSTIN            *string   `json:"gstin,omitempty"`
	StateCode        *string   `json:"state_code,omitempty"`
	ContactPerson    *string   `json:"contact_person,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Address          *string   `json:"address,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsInterState reports whether supplies from v to a company in companyState attract
// IGST. Unknown state codes on either side are treated as intra-state.
func (v Vendor) IsInterState(companyState string) bool {
	if v.StateCode == nil || *v.StateCode == "" || companyState == "" {
		return false
	}
	return *v.StateCode != companyState
}

// VendorInput holds the fields required to create a new vendor.
type VendorInput struct {
	Code             string `validate:"required,max=20"`
	Name             string `validate:"required"`
	GSTIN            string `validate:"omitempty,len=15,alphanum"`
	ContactPerson    string
	Email            string `validate:"omitempty,email"`
	Phone            string
	Address          string
	PaymentTermsDays int `validate:"gte=0"`
}

// VendorService provides vendor master data operations.
type VendorService interface {
	// CreateVendor creates a new vendor record for the given company.
	CreateVendor(ctx context.Context, companyID int, input VendorInput) (*Vendor, error)

	// GetVendors returns all active vendors for a company.
	GetVendors(ctx context.Context, companyID int) ([]Vendor, error)

	// GetVendorByCode returns a specific vendor by its code, scoped to the company.
	GetVendorByCode(ctx context.Context, companyID int, code string) (*Vendor, error)
}
