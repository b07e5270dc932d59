package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type companyService struct {
	pool *pgxpool.Pool
}

// NewCompanyService constructs a CompanyService backed by PostgreSQL.
func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

const companyColumns = `id, company_code, name, base_currency, COALESCE(state_code, '')`

func scanCompany(row pgx.Row, c *Company) error {
	return row.Scan(&c.ID, &c.CompanyCode, &c.Name, &c.BaseCurrency, &c.StateCode)
}

func (s *companyService) GetByCode(ctx context.Context, code string) (*Company, error) {
	c := &Company{}
	err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE company_code = $1", code,
	), c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("get company %s: %w", code, err)
	}
	return c, nil
}

func (s *companyService) GetByID(ctx context.Context, id int) (*Company, error) {
	c := &Company{}
	err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id = $1", id,
	), c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company id=%d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get company id=%d: %w", id, err)
	}
	return c, nil
}

func (s *companyService) GetDefault(ctx context.Context) (*Company, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	switch {
	case count == 0:
		return nil, fmt.Errorf("no company found, have migrations and seed data run?: %w", ErrNotFound)
	case count > 1:
		return nil, fmt.Errorf("multiple companies found; set COMPANY_CODE (e.g. COMPANY_CODE=1000)")
	}

	c := &Company{}
	if err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies LIMIT 1",
	), c); err != nil {
		return nil, fmt.Errorf("get default company: %w", err)
	}
	return c, nil
}
