package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DocumentSummary is a list row: header, totals and line count without the lines.
type DocumentSummary struct {
	Header    DocumentHeader `json:"header"`
	Totals    DocumentTotals `json:"totals"`
	LineCount int            `json:"line_count"`
}

// ReconcileIssue describes a stored document whose amounts no longer match a fresh
// recomputation from its stored inputs.
type ReconcileIssue struct {
	DocumentID int    `json:"document_id"`
	LineNumber int    `json:"line_number,omitempty"` // 0 for header totals
	Field      string `json:"field"`
	Stored     string `json:"stored"`
	Computed   string `json:"computed"`
}

type DocumentService interface {
	DocumentStore

	// GetDocuments lists documents for a company. Empty kind or status means no filter.
	GetDocuments(ctx context.Context, companyID int, kind DocumentKind, status DocumentStatus) ([]DocumentSummary, error)

	// PostDocument transitions a DRAFT document to POSTED and assigns its gapless number.
	PostDocument(ctx context.Context, companyID, documentID int) (*DocumentHeader, error)

	// ReconcileDocuments recomputes every stored line and header total and reports
	// each amount that differs from what was persisted.
	ReconcileDocuments(ctx context.Context, companyID int) ([]ReconcileIssue, error)
}

type documentService struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewDocumentService(pool *pgxpool.Pool, logger zerolog.Logger) DocumentService {
	return &documentService{pool: pool, logger: logger}
}

// SaveDocument recomputes the lines server-side, runs the submit gate, resolves vendor
// and product references and writes header, lines and totals in one transaction.
// Saving with header.ID set replaces the lines of an existing DRAFT document.
func (s *documentService) SaveDocument(ctx context.Context, header DocumentHeader, inputs []LineInput) (*SaveAck, error) {
	lines := BuildLines(header.Kind, inputs)
	if err := ValidateForSubmit(header, lines); err != nil {
		return nil, err
	}
	docDate, err := time.Parse("2006-01-02", strings.TrimSpace(header.DocumentDate))
	if err != nil {
		return nil, fmt.Errorf("parse document date: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ve := &ValidationError{}

	var vendorID *int
	if header.VendorCode != "" {
		var id int
		err := tx.QueryRow(ctx,
			"SELECT id FROM vendors WHERE company_id = $1 AND code = $2 AND is_active = true",
			header.CompanyID, header.VendorCode,
		).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			ve.add("Vendor %q not found", header.VendorCode)
		case err != nil:
			return nil, fmt.Errorf("resolve vendor: %w", err)
		default:
			vendorID = &id
		}
	}

	for i := range lines {
		if err := resolveLineProduct(ctx, tx, header.CompanyID, &lines[i]); err != nil {
			if errors.Is(err, ErrNotFound) {
				ve.add("Row %d: %v", i+1, err)
				continue
			}
			return nil, err
		}
	}
	if len(ve.Messages) > 0 {
		return nil, ve
	}

	totals := Aggregate(lines)
	docID := header.ID

	if docID == 0 {
		if err := tx.QueryRow(ctx, `
			INSERT INTO documents (company_id, kind, type_code, status, reference_no, vendor_id, location_code,
			                       document_date, parent_id, bom_product_id, inter_state, notes,
			                       subtotal, cgst_total, sgst_total, igst_total, total_tax, grand_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			RETURNING id`,
			header.CompanyID, string(header.Kind), header.Kind.TypeCode(), string(DocumentStatusDraft),
			strings.TrimSpace(header.ReferenceNo), vendorID, nullIfEmpty(header.LocationCode),
			docDate, header.ParentID, header.BOMProductID, header.InterState, nullIfEmpty(header.Notes),
			totals.Subtotal, totals.CGSTTotal, totals.SGSTTotal, totals.IGSTTotal, totals.TotalTax, totals.GrandTotal,
		).Scan(&docID); err != nil {
			return nil, fmt.Errorf("insert document: %w", err)
		}
	} else {
		var kind, status string
		if err := tx.QueryRow(ctx,
			"SELECT kind, status FROM documents WHERE id = $1 AND company_id = $2 FOR UPDATE",
			docID, header.CompanyID,
		).Scan(&kind, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("document %d: %w", docID, ErrNotFound)
			}
			return nil, fmt.Errorf("lock document %d: %w", docID, err)
		}
		if DocumentStatus(status) != DocumentStatusDraft {
			return nil, fmt.Errorf("%w: document %d cannot be edited: status is %s (must be DRAFT)", ErrInvalidState, docID, status)
		}
		if DocumentKind(kind) != header.Kind {
			return nil, fmt.Errorf("%w: document %d is a %s and cannot be saved as %s", ErrInvalidState, docID, kind, header.Kind)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE documents
			SET reference_no = $1, vendor_id = $2, location_code = $3, document_date = $4, parent_id = $5,
			    bom_product_id = $6, inter_state = $7, notes = $8,
			    subtotal = $9, cgst_total = $10, sgst_total = $11, igst_total = $12, total_tax = $13, grand_total = $14
			WHERE id = $15`,
			strings.TrimSpace(header.ReferenceNo), vendorID, nullIfEmpty(header.LocationCode), docDate,
			header.ParentID, header.BOMProductID, header.InterState, nullIfEmpty(header.Notes),
			totals.Subtotal, totals.CGSTTotal, totals.SGSTTotal, totals.IGSTTotal, totals.TotalTax, totals.GrandTotal,
			docID,
		); err != nil {
			return nil, fmt.Errorf("update document %d: %w", docID, err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM document_lines WHERE document_id = $1", docID); err != nil {
			return nil, fmt.Errorf("clear lines of document %d: %w", docID, err)
		}
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO document_lines
			            (document_id, line_number, product_id, description, uom, hsn_code, quantity, ordered_quantity,
			             unit_price, discount, cgst_percent, sgst_percent, igst_percent,
			             taxable_value, cgst_amount, sgst_amount, igst_amount, line_total,
			             is_serial_number_applicable, serial_numbers, batch_number, source_line_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
			docID, l.LineNumber, l.ProductID, nullIfEmpty(l.Description), nullIfEmpty(l.UOM), nullIfEmpty(l.HSNCode),
			l.Quantity, l.OrderedQuantity, l.UnitPrice, l.Discount,
			l.CGSTPercent, l.SGSTPercent, l.IGSTPercent,
			l.TaxableValue, l.CGSTAmount, l.SGSTAmount, l.IGSTAmount, l.LineTotal,
			l.IsSerialNumberApplicable, nullIfEmpty(l.SerialNumbers), nullIfEmpty(l.BatchNumber), l.SourceLineID,
		); err != nil {
			return nil, fmt.Errorf("insert line %d: %w", l.LineNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}

	s.logger.Info().
		Int("document_id", docID).
		Str("kind", string(header.Kind)).
		Int("lines", len(lines)).
		Str("grand_total", totals.GrandTotal.StringFixed(2)).
		Msg("document saved")

	return &SaveAck{DocumentID: docID, Status: DocumentStatusDraft, Totals: totals, LineCount: len(lines)}, nil
}

// resolveLineProduct fills ProductID from ProductCode, or checks that a given ProductID
// belongs to the company. Unknown products wrap ErrNotFound.
func resolveLineProduct(ctx context.Context, tx pgx.Tx, companyID int, l *LineItem) error {
	var id int
	var code string
	var err error
	if l.ProductID > 0 {
		err = tx.QueryRow(ctx,
			"SELECT id, code FROM products WHERE company_id = $1 AND id = $2",
			companyID, l.ProductID,
		).Scan(&id, &code)
	} else {
		err = tx.QueryRow(ctx,
			"SELECT id, code FROM products WHERE company_id = $1 AND code = $2 AND is_active = true",
			companyID, l.ProductCode,
		).Scan(&id, &code)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			ref := l.ProductCode
			if l.ProductID > 0 {
				ref = fmt.Sprintf("id=%d", l.ProductID)
			}
			return fmt.Errorf("product %q: %w", ref, ErrNotFound)
		}
		return fmt.Errorf("resolve product: %w", err)
	}
	l.ProductID = id
	l.ProductCode = code
	return nil
}

const documentHeaderColumns = `d.id, d.company_id, d.kind, d.status, d.reference_no, d.document_number,
	COALESCE(v.code, ''), COALESCE(d.location_code, ''), d.document_date, d.parent_id, d.bom_product_id,
	d.inter_state, COALESCE(d.notes, ''), d.created_at, d.posted_at`

const documentTotalsColumns = `d.subtotal, d.cgst_total, d.sgst_total, d.igst_total, d.total_tax, d.grand_total`

func scanDocumentHeader(dest []any, h *DocumentHeader, docDate *time.Time) []any {
	return append(dest,
		&h.ID, &h.CompanyID, &h.Kind, &h.Status, &h.ReferenceNo, &h.DocumentNumber,
		&h.VendorCode, &h.LocationCode, docDate, &h.ParentID, &h.BOMProductID,
		&h.InterState, &h.Notes, &h.CreatedAt, &h.PostedAt,
	)
}

func scanTotals(dest []any, t *DocumentTotals) []any {
	return append(dest, &t.Subtotal, &t.CGSTTotal, &t.SGSTTotal, &t.IGSTTotal, &t.TotalTax, &t.GrandTotal)
}

// FetchExistingDocument loads a document and its lines. Totals are re-aggregated from
// the stored per-line amounts.
func (s *documentService) FetchExistingDocument(ctx context.Context, companyID, documentID int) (*Document, error) {
	doc := &Document{}
	var docDate time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT `+documentHeaderColumns+`
		FROM documents d
		LEFT JOIN vendors v ON v.id = d.vendor_id
		WHERE d.id = $1 AND d.company_id = $2`,
		documentID, companyID,
	).Scan(scanDocumentHeader(nil, &doc.Header, &docDate)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %d: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch document %d: %w", documentID, err)
	}
	doc.Header.DocumentDate = docDate.Format("2006-01-02")

	lines, err := s.loadLines(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	doc.Totals = Aggregate(lines)
	if doc.Header.Kind == KindBOM {
		doc.Rollup = RollupUnits(lines)
	}
	return doc, nil
}

func (s *documentService) loadLines(ctx context.Context, documentID int) ([]LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.line_number, l.product_id, p.code, COALESCE(l.description, ''), COALESCE(l.uom, ''),
		       COALESCE(l.hsn_code, ''), l.quantity, l.ordered_quantity, l.unit_price, l.discount,
		       l.cgst_percent, l.sgst_percent, l.igst_percent,
		       l.taxable_value, l.cgst_amount, l.sgst_amount, l.igst_amount, l.line_total,
		       l.is_serial_number_applicable, COALESCE(l.serial_numbers, ''), COALESCE(l.batch_number, ''),
		       l.source_line_id
		FROM document_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.document_id = $1
		ORDER BY l.line_number`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("get lines of document %d: %w", documentID, err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		var lineID int
		if err := rows.Scan(
			&lineID, &l.LineNumber, &l.ProductID, &l.ProductCode, &l.Description, &l.UOM,
			&l.HSNCode, &l.Quantity, &l.OrderedQuantity, &l.UnitPrice, &l.Discount,
			&l.CGSTPercent, &l.SGSTPercent, &l.IGSTPercent,
			&l.TaxableValue, &l.CGSTAmount, &l.SGSTAmount, &l.IGSTAmount, &l.LineTotal,
			&l.IsSerialNumberApplicable, &l.SerialNumbers, &l.BatchNumber,
			&l.SourceLineID,
		); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		l.RowID = fmt.Sprintf("line-%d", lineID)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// FetchLinkedItems seeds a GRN from the open quantities of an APPROVED purchase order,
// or an invoice from the lines of a POSTED goods receipt.
func (s *documentService) FetchLinkedItems(ctx context.Context, companyID int, kind DocumentKind, parentID int) ([]LineItem, error) {
	switch kind {
	case KindGRN:
		return s.linkedFromPurchaseOrder(ctx, companyID, parentID)
	case KindInvoice:
		return s.linkedFromGoodsReceipt(ctx, companyID, parentID)
	}
	return nil, fmt.Errorf("%w: %s documents have no linked parent", ErrInvalidState, kind)
}

func (s *documentService) linkedFromPurchaseOrder(ctx context.Context, companyID, poID int) ([]LineItem, error) {
	var status string
	if err := s.pool.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 AND company_id = $2", poID, companyID,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}
	if status != POStatusApproved {
		return nil, fmt.Errorf("%w: purchase order %d is %s; goods can only be received against an APPROVED order", ErrInvalidState, poID, status)
	}

	// Remaining quantity = ordered minus what non-cancelled GRNs already received.
	rows, err := s.pool.Query(ctx, `
		SELECT pl.id, pl.product_id, p.code, pl.description, COALESCE(pl.uom, p.unit), COALESCE(p.hsn_code, ''),
		       pl.quantity, pl.quantity - COALESCE((
		           SELECT SUM(dl.quantity)
		           FROM document_lines dl
		           JOIN documents d ON d.id = dl.document_id
		           WHERE dl.source_line_id = pl.id AND d.kind = 'GRN' AND d.status <> 'CANCELLED'
		       ), 0),
		       pl.unit_cost, pl.cgst_percent, pl.sgst_percent, pl.igst_percent
		FROM purchase_order_lines pl
		JOIN products p ON p.id = pl.product_id
		WHERE pl.order_id = $1
		ORDER BY pl.line_number`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("get lines of purchase order %d: %w", poID, err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var l LineItem
		var poLineID int
		var ordered, remaining decimal.Decimal
		if err := rows.Scan(&poLineID, &l.ProductID, &l.ProductCode, &l.Description, &l.UOM, &l.HSNCode,
			&ordered, &remaining, &l.UnitPrice, &l.CGSTPercent, &l.SGSTPercent, &l.IGSTPercent); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		if !remaining.IsPositive() {
			continue
		}
		id := poLineID
		l.SourceLineID = &id
		l.OrderedQuantity = ordered
		l.Quantity = remaining
		l.LineAmounts = ComputeLine(l.Quantity, l.UnitPrice, decimal.Zero, l.CGSTPercent, l.SGSTPercent, l.IGSTPercent)
		l.LineNumber = len(items) + 1
		items = append(items, l)
	}
	return items, rows.Err()
}

func (s *documentService) linkedFromGoodsReceipt(ctx context.Context, companyID, grnID int) ([]LineItem, error) {
	var kind, status string
	if err := s.pool.QueryRow(ctx,
		"SELECT kind, status FROM documents WHERE id = $1 AND company_id = $2", grnID, companyID,
	).Scan(&kind, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("goods receipt %d: %w", grnID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch goods receipt %d: %w", grnID, err)
	}
	if DocumentKind(kind) != KindGRN {
		return nil, fmt.Errorf("%w: document %d is a %s, not a goods receipt", ErrInvalidState, grnID, kind)
	}
	if DocumentStatus(status) != DocumentStatusPosted {
		return nil, fmt.Errorf("%w: goods receipt %d is %s; only POSTED receipts can be invoiced", ErrInvalidState, grnID, status)
	}

	grnLines, err := s.loadLines(ctx, grnID)
	if err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(grnLines))
	for _, g := range grnLines {
		id := storedLineID(g.RowID)
		l := LineItem{
			LineNumber:  len(items) + 1,
			ProductID:   g.ProductID,
			ProductCode: g.ProductCode,
			Description: g.Description,
			UOM:         g.UOM,
			HSNCode:     g.HSNCode,
			Quantity:    g.Quantity,
			UnitPrice:   g.UnitPrice,
			Discount:    decimal.Zero,
			CGSTPercent: g.CGSTPercent,
			SGSTPercent: g.SGSTPercent,
			IGSTPercent: g.IGSTPercent,
		}
		if id > 0 {
			l.SourceLineID = &id
		}
		l.LineAmounts = ComputeLine(l.Quantity, l.UnitPrice, l.Discount, l.CGSTPercent, l.SGSTPercent, l.IGSTPercent)
		items = append(items, l)
	}
	return items, nil
}

// GetDocuments lists document headers with their stored totals, newest first.
func (s *documentService) GetDocuments(ctx context.Context, companyID int, kind DocumentKind, status DocumentStatus) ([]DocumentSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentHeaderColumns+`, `+documentTotalsColumns+`,
		       (SELECT COUNT(*) FROM document_lines l WHERE l.document_id = d.id)
		FROM documents d
		LEFT JOIN vendors v ON v.id = d.vendor_id
		WHERE d.company_id = $1
		  AND ($2 = '' OR d.kind = $2)
		  AND ($3 = '' OR d.status = $3)
		ORDER BY d.document_date DESC, d.id DESC`,
		companyID, string(kind), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var sum DocumentSummary
		var docDate time.Time
		dest := scanDocumentHeader(nil, &sum.Header, &docDate)
		dest = scanTotals(dest, &sum.Totals)
		dest = append(dest, &sum.LineCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sum.Header.DocumentDate = docDate.Format("2006-01-02")
		out = append(out, sum)
	}
	return out, rows.Err()
}

// PostDocument posts a DRAFT document and assigns its gapless number.
func (s *documentService) PostDocument(ctx context.Context, companyID, documentID int) (*DocumentHeader, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var typeCode, status string
	var docDate time.Time
	err = tx.QueryRow(ctx, `
		SELECT type_code, status, document_date
		FROM documents
		WHERE id = $1 AND company_id = $2
		FOR UPDATE`,
		documentID, companyID,
	).Scan(&typeCode, &status, &docDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %d: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("read document for update: %w", err)
	}
	if DocumentStatus(status) != DocumentStatusDraft {
		return nil, fmt.Errorf("%w: document %d must be in DRAFT status to be posted, current status: %s", ErrInvalidState, documentID, status)
	}

	number, err := nextDocumentNumber(ctx, tx, companyID, typeCode, docDate)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE documents
		SET status = $1, document_number = $2, posted_at = NOW()
		WHERE id = $3`,
		string(DocumentStatusPosted), number, documentID,
	); err != nil {
		return nil, fmt.Errorf("update document status and number: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit posting: %w", err)
	}

	s.logger.Info().Int("document_id", documentID).Str("number", number).Msg("document posted")

	doc, err := s.FetchExistingDocument(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	return &doc.Header, nil
}

// nextDocumentNumber allocates the next gapless number for a document type inside tx.
// Types that reset every financial year get an "YYYY-YY" segment, others "GLOBAL".
func nextDocumentNumber(ctx context.Context, tx pgx.Tx, companyID int, typeCode string, docDate time.Time) (string, error) {
	var resets bool
	if err := tx.QueryRow(ctx,
		"SELECT resets_every_fy FROM document_types WHERE code = $1", typeCode,
	).Scan(&resets); err != nil {
		return "", fmt.Errorf("get document type %s: %w", typeCode, err)
	}

	var fy *int
	if resets {
		y := FinancialYear(docDate)
		fy = &y
	}

	// Concurrency-safe: the upsert takes a row lock on the sequence until commit.
	var lastNumber int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, type_code, financial_year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, type_code, (COALESCE(financial_year, -1)))
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		companyID, typeCode, fy,
	).Scan(&lastNumber); err != nil {
		return "", fmt.Errorf("generate gapless sequence number: %w", err)
	}

	yearStr := "GLOBAL"
	if fy != nil {
		yearStr = fmt.Sprintf("%d-%02d", *fy, (*fy+1)%100)
	}
	return fmt.Sprintf("%s-%s-%05d", typeCode, yearStr, lastNumber), nil
}

// ReconcileDocuments recomputes all lines of all documents of a company from their
// stored inputs and compares against the stored amounts and header totals.
func (s *documentService) ReconcileDocuments(ctx context.Context, companyID int) ([]ReconcileIssue, error) {
	summaries, err := s.GetDocuments(ctx, companyID, "", "")
	if err != nil {
		return nil, err
	}

	var issues []ReconcileIssue
	for _, sum := range summaries {
		stored, err := s.loadLines(ctx, sum.Header.ID)
		if err != nil {
			return nil, err
		}
		recomputed := make([]LineItem, len(stored))
		for i, l := range stored {
			recomputed[i] = l
			recomputed[i].LineAmounts = ComputeLine(l.Quantity, l.UnitPrice, l.Discount,
				l.CGSTPercent, l.SGSTPercent, l.IGSTPercent)
			issues = append(issues, diffAmounts(sum.Header.ID, l.LineNumber, l.LineAmounts, recomputed[i].LineAmounts)...)
		}
		issues = append(issues, diffTotals(sum.Header.ID, sum.Totals, Aggregate(recomputed))...)
	}

	if len(issues) > 0 {
		s.logger.Warn().Int("company_id", companyID).Int("issues", len(issues)).Msg("reconciliation found mismatches")
	}
	return issues, nil
}

func diffAmounts(docID, lineNo int, stored, computed LineAmounts) []ReconcileIssue {
	pairs := []struct {
		field string
		a, b  decimal.Decimal
	}{
		{"taxable_value", stored.TaxableValue, computed.TaxableValue},
		{"cgst_amount", stored.CGSTAmount, computed.CGSTAmount},
		{"sgst_amount", stored.SGSTAmount, computed.SGSTAmount},
		{"igst_amount", stored.IGSTAmount, computed.IGSTAmount},
		{"line_total", stored.LineTotal, computed.LineTotal},
	}
	var out []ReconcileIssue
	for _, p := range pairs {
		if !p.a.Equal(p.b) {
			out = append(out, ReconcileIssue{DocumentID: docID, LineNumber: lineNo, Field: p.field,
				Stored: p.a.StringFixed(2), Computed: p.b.StringFixed(2)})
		}
	}
	return out
}

func diffTotals(docID int, stored, computed DocumentTotals) []ReconcileIssue {
	pairs := []struct {
		field string
		a, b  decimal.Decimal
	}{
		{"subtotal", stored.Subtotal, computed.Subtotal},
		{"cgst_total", stored.CGSTTotal, computed.CGSTTotal},
		{"sgst_total", stored.SGSTTotal, computed.SGSTTotal},
		{"igst_total", stored.IGSTTotal, computed.IGSTTotal},
		{"total_tax", stored.TotalTax, computed.TotalTax},
		{"grand_total", stored.GrandTotal, computed.GrandTotal},
	}
	var out []ReconcileIssue
	for _, p := range pairs {
		if !p.a.Equal(p.b) {
			out = append(out, ReconcileIssue{DocumentID: docID, Field: p.field,
				Stored: p.a.StringFixed(2), Computed: p.b.StringFixed(2)})
		}
	}
	return out
}

// storedLineID recovers the document_lines primary key from a row id set by loadLines.
func storedLineID(rowID string) int {
	id, err := strconv.Atoi(strings.TrimPrefix(rowID, "line-"))
	if err != nil {
		return 0
	}
	return id
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
