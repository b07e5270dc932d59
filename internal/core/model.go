package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by lookups that found no matching row.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is wrapped when a record exists but its status or kind does not allow
// the requested operation.
var ErrInvalidState = errors.New("invalid state")

type Company struct {
	ID           int    `json:"id"`
	CompanyCode  string `json:"company_code"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
	StateCode    string `json:"state_code"` // GST state code, e.g. "29" for Karnataka
}

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusPosted    DocumentStatus = "POSTED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// FinancialYear returns the Indian financial year (April to March) a date falls in,
// identified by its starting calendar year.
func FinancialYear(t time.Time) int {
	if t.Month() < time.April {
		return t.Year() - 1
	}
	return t.Year()
}

// CompanyService resolves the company a request operates on.
type CompanyService interface {
	// GetByCode returns a company by its code.
	GetByCode(ctx context.Context, code string) (*Company, error)

	// GetByID returns a company by primary key.
	GetByID(ctx context.Context, id int) (*Company, error)

	// GetDefault returns the only company in the database. It fails when there is more
	// than one, since the caller must then name a company explicitly.
	GetDefault(ctx context.Context) (*Company, error)
}
