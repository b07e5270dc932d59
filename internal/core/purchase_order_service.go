package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type purchaseOrderService struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool, logger zerolog.Logger) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, logger: logger}
}

// CreatePO creates a new DRAFT purchase order with computed line amounts and totals.
func (s *purchaseOrderService) CreatePO(ctx context.Context, companyID int, vendorCode string, poDate time.Time, lines []PurchaseOrderLineInput, notes string) (*PurchaseOrder, error) {
	ve := &ValidationError{}
	if vendorCode == "" {
		ve.add("Vendor is required")
	}
	if len(lines) == 0 {
		ve.add("At least one line item is required")
	}
	for i, in := range lines {
		if err := validate.Struct(in); err != nil {
			ve.add("Row %d: product is required", i+1)
		}
		if !in.Quantity.IsPositive() {
			ve.add("Row %d: quantity must be greater than zero", i+1)
		}
		if in.UnitCost.IsNegative() {
			ve.add("Row %d: unit cost must not be negative", i+1)
		}
	}
	if len(ve.Messages) > 0 {
		return nil, ve
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var vendorID int
	var vendorState, companyState *string
	if err := tx.QueryRow(ctx, `
		SELECT v.id, v.state_code, c.state_code
		FROM vendors v
		JOIN companies c ON c.id = v.company_id
		WHERE v.company_id = $1 AND v.code = $2 AND v.is_active = true`,
		companyID, vendorCode,
	).Scan(&vendorID, &vendorState, &companyState); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %q: %w", vendorCode, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve vendor: %w", err)
	}
	vendor := Vendor{StateCode: vendorState}
	interState := companyState != nil && vendor.IsInterState(*companyState)

	type resolvedLine struct {
		productID   int
		description string
		uom         string
		item        LineItem
	}

	var resolved []resolvedLine
	var items []LineItem

	for i, input := range lines {
		var p Product
		err := tx.QueryRow(ctx,
			"SELECT id, code, name, unit_price, unit, gst_rate FROM products WHERE company_id = $1 AND code = $2 AND is_active = true",
			companyID, input.ProductCode,
		).Scan(&p.ID, &p.Code, &p.Name, &p.UnitPrice, &p.Unit, &p.GSTRate)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line %d: product %q: %w", i+1, input.ProductCode, ErrNotFound)
			}
			return nil, fmt.Errorf("line %d: resolve product: %w", i+1, err)
		}

		unitCost := input.UnitCost
		if unitCost.IsZero() {
			unitCost = p.UnitPrice
		}
		rate := p.GSTRate
		if input.GSTRate != nil {
			rate = *input.GSTRate
		}
		cgst, sgst, igst := SplitGST(rate, interState)

		description := input.Description
		if description == "" {
			description = p.Name
		}

		item := LineItem{
			LineNumber:  i + 1,
			ProductID:   p.ID,
			Quantity:    input.Quantity,
			UnitPrice:   unitCost,
			CGSTPercent: cgst,
			SGSTPercent: sgst,
			IGSTPercent: igst,
			LineAmounts: ComputeLine(input.Quantity, unitCost, decimal.Zero, cgst, sgst, igst),
		}
		resolved = append(resolved, resolvedLine{productID: p.ID, description: description, uom: p.Unit, item: item})
		items = append(items, item)
	}

	totals := Aggregate(items)

	var poID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (company_id, vendor_id, status, po_date, inter_state,
		                             subtotal, cgst_total, sgst_total, igst_total, total_tax, grand_total, notes)
		VALUES ($1, $2, 'DRAFT', $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		companyID, vendorID, poDate, interState,
		totals.Subtotal, totals.CGSTTotal, totals.SGSTTotal, totals.IGSTTotal, totals.TotalTax, totals.GrandTotal,
		nullIfEmpty(notes),
	).Scan(&poID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	for _, rl := range resolved {
		l := rl.item
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines
			            (order_id, line_number, product_id, description, uom, quantity, unit_cost,
			             cgst_percent, sgst_percent, igst_percent,
			             taxable_value, cgst_amount, sgst_amount, igst_amount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			poID, l.LineNumber, rl.productID, rl.description, rl.uom, l.Quantity, l.UnitPrice,
			l.CGSTPercent, l.SGSTPercent, l.IGSTPercent,
			l.TaxableValue, l.CGSTAmount, l.SGSTAmount, l.IGSTAmount, l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("insert PO line %d: %w", l.LineNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}

	s.logger.Info().Int("po_id", poID).Str("vendor", vendorCode).
		Str("grand_total", totals.GrandTotal.StringFixed(2)).Msg("purchase order created")

	return s.GetPO(ctx, companyID, poID)
}

// ApprovePO transitions a DRAFT PO to APPROVED, assigning a gapless PO number.
// Approving an already-APPROVED PO is a no-op.
func (s *purchaseOrderService) ApprovePO(ctx context.Context, companyID, poID int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var poDate time.Time
	if err := tx.QueryRow(ctx,
		"SELECT status, po_date FROM purchase_orders WHERE id = $1 AND company_id = $2 FOR UPDATE",
		poID, companyID,
	).Scan(&status, &poDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}

	if status == POStatusApproved {
		return s.GetPO(ctx, companyID, poID)
	}
	if status != POStatusDraft {
		return nil, fmt.Errorf("%w: purchase order %d cannot be approved: status is %s (must be DRAFT)", ErrInvalidState, poID, status)
	}

	poNumber, err := nextDocumentNumber(ctx, tx, companyID, "PO", poDate)
	if err != nil {
		return nil, fmt.Errorf("number purchase order: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET status = 'APPROVED', po_number = $1, approved_at = NOW()
		WHERE id = $2`,
		poNumber, poID,
	); err != nil {
		return nil, fmt.Errorf("approve purchase order %d: %w", poID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit PO approval: %w", err)
	}

	s.logger.Info().Int("po_id", poID).Str("po_number", poNumber).Msg("purchase order approved")
	return s.GetPO(ctx, companyID, poID)
}

const purchaseOrderColumns = `po.id, po.company_id, po.vendor_id, v.code, v.name,
	po.po_number, po.status, po.po_date::text, po.expected_delivery_date::text, po.inter_state,
	po.subtotal, po.cgst_total, po.sgst_total, po.igst_total, po.total_tax, po.grand_total,
	po.notes, po.approved_at, po.created_at`

func scanPurchaseOrder(row pgx.Row, po *PurchaseOrder) error {
	return row.Scan(
		&po.ID, &po.CompanyID, &po.VendorID, &po.VendorCode, &po.VendorName,
		&po.PONumber, &po.Status, &po.PODate, &po.ExpectedDeliveryDate, &po.InterState,
		&po.Totals.Subtotal, &po.Totals.CGSTTotal, &po.Totals.SGSTTotal, &po.Totals.IGSTTotal,
		&po.Totals.TotalTax, &po.Totals.GrandTotal,
		&po.Notes, &po.ApprovedAt, &po.CreatedAt,
	)
}

// GetPO returns a purchase order by its internal ID, including all lines.
func (s *purchaseOrderService) GetPO(ctx context.Context, companyID, poID int) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	if err := scanPurchaseOrder(s.pool.QueryRow(ctx, `
		SELECT `+purchaseOrderColumns+`
		FROM purchase_orders po
		JOIN vendors v ON v.id = po.vendor_id
		WHERE po.id = $1 AND po.company_id = $2`,
		poID, companyID,
	), po); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase order %d: %w", poID, err)
	}

	lines, err := s.fetchLines(ctx, poID)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return po, nil
}

// GetPOs returns purchase orders for a company, optionally filtered by status.
func (s *purchaseOrderService) GetPOs(ctx context.Context, companyID int, status string) ([]PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseOrderColumns + `
		FROM purchase_orders po
		JOIN vendors v ON v.id = po.vendor_id
		WHERE po.company_id = $1`
	args := []any{companyID}

	if status != "" {
		query += " AND po.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY po.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := scanPurchaseOrder(rows, &po); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// fetchLines returns all lines for a purchase order.
func (s *purchaseOrderService) fetchLines(ctx context.Context, poID int) ([]PurchaseOrderLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pol.id, pol.order_id, pol.line_number,
		       pol.product_id, p.code, p.name,
		       pol.description, COALESCE(pol.uom, ''), pol.quantity, pol.unit_cost,
		       pol.cgst_percent, pol.sgst_percent, pol.igst_percent,
		       pol.taxable_value, pol.cgst_amount, pol.sgst_amount, pol.igst_amount, pol.line_total
		FROM purchase_order_lines pol
		JOIN products p ON p.id = pol.product_id
		WHERE pol.order_id = $1
		ORDER BY pol.line_number`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch PO lines for order %d: %w", poID, err)
	}
	defer rows.Close()

	var lines []PurchaseOrderLine
	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.LineNumber,
			&l.ProductID, &l.ProductCode, &l.ProductName,
			&l.Description, &l.UOM, &l.Quantity, &l.UnitCost,
			&l.CGSTPercent, &l.SGSTPercent, &l.IGSTPercent,
			&l.TaxableValue, &l.CGSTAmount, &l.SGSTAmount, &l.IGSTAmount, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan PO line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
