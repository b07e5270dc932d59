package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type productService struct {
	pool   *pgxpool.Pool
	cache  *ProductCache
	logger zerolog.Logger
}

// NewProductService constructs a ProductService backed by PostgreSQL with an optional
// Redis lookup cache (pass nil to disable caching).
func NewProductService(pool *pgxpool.Pool, cache *ProductCache, logger zerolog.Logger) ProductService {
	return &productService{pool: pool, cache: cache, logger: logger}
}

const productColumns = `id, company_id, code, name, COALESCE(description, ''), unit_price, unit,
	COALESCE(hsn_code, ''), gst_rate, is_active, created_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
		&p.Unit, &p.HSNCode, &p.GSTRate, &p.IsActive, &p.CreatedAt)
}

// LookupProduct resolves a query to a single active product: an exact code match wins,
// otherwise the first product whose name starts with the query. Results are cached;
// cache errors are logged and fall through to the database.
func (s *productService) LookupProduct(ctx context.Context, companyID int, query string) (*Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("product query is empty")
	}

	if p, ok, err := s.cache.Get(ctx, companyID, query); err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("product cache read failed")
	} else if ok {
		return p, nil
	}

	p := &Product{}
	err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE company_id = $1 AND is_active = true
		  AND (code = $2 OR name ILIKE $3)
		ORDER BY (code = $2) DESC, name
		LIMIT 1`,
		companyID, query, escapeLike(query)+"%",
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", query, ErrNotFound)
		}
		return nil, fmt.Errorf("lookup product %q: %w", query, err)
	}

	if err := s.cache.Set(ctx, companyID, query, p); err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("product cache write failed")
	}
	return p, nil
}

// GetProducts returns all active products for a company, ordered by code.
func (s *productService) GetProducts(ctx context.Context, companyID int) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE company_id = $1 AND is_active = true
		ORDER BY code`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID returns a product by primary key, scoped to the company.
func (s *productService) GetProductByID(ctx context.Context, companyID, productID int) (*Product, error) {
	p := &Product{}
	err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE company_id = $1 AND id = $2`,
		companyID, productID,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product id=%d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("get product id=%d: %w", productID, err)
	}
	return p, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
