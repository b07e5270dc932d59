package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vendorService struct {
	pool *pgxpool.Pool
}

// NewVendorService constructs a VendorService backed by PostgreSQL.
func NewVendorService(pool *pgxpool.Pool) VendorService {
	return &vendorService{pool: pool}
}

const vendorColumns = `id, company_id, code, name, gstin, state_code, contact_person, email, phone, address,
	payment_terms_days, is_active, created_at`

func scanVendor(row pgx.Row, v *Vendor) error {
	return row.Scan(
		&v.ID, &v.CompanyID, &v.Code, &v.Name, &v.GSTIN, &v.StateCode,
		&v.ContactPerson, &v.Email, &v.Phone, &v.Address,
		&v.PaymentTermsDays, &v.IsActive, &v.CreatedAt,
	)
}

// CreateVendor validates and inserts a new vendor. The GST state code is taken from
// the first two characters of the GSTIN.
func (s *vendorService) CreateVendor(ctx context.Context, companyID int, input VendorInput) (*Vendor, error) {
	input.GSTIN = strings.ToUpper(strings.TrimSpace(input.GSTIN))
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			ve := &ValidationError{}
			for _, fe := range fieldErrs {
				ve.add("%s failed %q validation", fe.Field(), fe.Tag())
			}
			return nil, ve
		}
		return nil, fmt.Errorf("validate vendor: %w", err)
	}

	paymentTerms := input.PaymentTermsDays
	if paymentTerms == 0 {
		paymentTerms = 30
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	var stateCode *string
	if len(input.GSTIN) >= 2 {
		stateCode = toPtr(input.GSTIN[:2])
	}

	v := &Vendor{}
	err := scanVendor(s.pool.QueryRow(ctx, `
		INSERT INTO vendors (company_id, code, name, gstin, state_code, contact_person, email, phone, address,
		                     payment_terms_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+vendorColumns,
		companyID, input.Code, input.Name, toPtr(input.GSTIN), stateCode, toPtr(input.ContactPerson),
		toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address), paymentTerms,
	), v)
	if err != nil {
		return nil, fmt.Errorf("create vendor %q: %w", input.Code, err)
	}
	return v, nil
}

// GetVendors returns all active vendors for a company, ordered by code.
func (s *vendorService) GetVendors(ctx context.Context, companyID int) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+vendorColumns+`
		FROM vendors
		WHERE company_id = $1 AND is_active = true
		ORDER BY code`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("get vendors: %w", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := scanVendor(rows, &v); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// GetVendorByCode returns a vendor by code, scoped to the company.
func (s *vendorService) GetVendorByCode(ctx context.Context, companyID int, code string) (*Vendor, error) {
	v := &Vendor{}
	err := scanVendor(s.pool.QueryRow(ctx, `
		SELECT `+vendorColumns+`
		FROM vendors
		WHERE company_id = $1 AND code = $2`,
		companyID, code,
	), v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("get vendor %q: %w", code, err)
	}
	return v, nil
}
