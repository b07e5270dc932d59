package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/ai"
	"backoffice/internal/core"
	"backoffice/internal/metrics"

	"github.com/rs/zerolog"
)

type appService struct {
	companies      core.CompanyService
	documents      core.DocumentService
	products       core.ProductService
	vendors        core.VendorService
	orders         core.PurchaseOrderService
	users          core.UserService
	extractor      ai.LineExtractor
	docMetrics     *metrics.DocumentMetrics
	defaultCompany string
	logger         zerolog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// A nil extractor disables ExtractLineItems; nil metrics are not recorded.
func NewAppService(
	companies core.CompanyService,
	documents core.DocumentService,
	products core.ProductService,
	vendors core.VendorService,
	orders core.PurchaseOrderService,
	users core.UserService,
	extractor ai.LineExtractor,
	docMetrics *metrics.DocumentMetrics,
	defaultCompany string,
	logger zerolog.Logger,
) ApplicationService {
	return &appService{
		companies:      companies,
		documents:      documents,
		products:       products,
		vendors:        vendors,
		orders:         orders,
		users:          users,
		extractor:      extractor,
		docMetrics:     docMetrics,
		defaultCompany: defaultCompany,
		logger:         logger,
	}
}

// LoadDefaultCompany loads the active company, using the configured company code if set.
func (s *appService) LoadDefaultCompany(ctx context.Context) (*core.Company, error) {
	if s.defaultCompany != "" {
		return s.companies.GetByCode(ctx, s.defaultCompany)
	}
	return s.companies.GetDefault(ctx)
}

// ComputeDocument recomputes every line, the totals and the unit rollup.
func (s *appService) ComputeDocument(ctx context.Context, req DocumentRequest) (*ComputeResult, error) {
	if !req.Header.Kind.Valid() {
		return nil, &core.ValidationError{Messages: []string{fmt.Sprintf("Unknown document kind %q", req.Header.Kind)}}
	}
	return computeResult(core.BuildLines(req.Header.Kind, req.Lines)), nil
}

// ValidateDocument computes the document and runs the submit gate over it.
func (s *appService) ValidateDocument(ctx context.Context, req DocumentRequest) (*ComputeResult, error) {
	result, err := s.ComputeDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	return result, core.ValidateForSubmit(req.Header, result.Lines)
}

// SaveDocument validates and persists a document as DRAFT, recording the outcome.
func (s *appService) SaveDocument(ctx context.Context, req DocumentRequest) (*core.SaveAck, error) {
	company, err := s.companies.GetByCode(ctx, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	header := req.Header
	header.CompanyID = company.ID
	if header.VendorCode != "" {
		if v, err := s.vendors.GetVendorByCode(ctx, company.ID, header.VendorCode); err == nil {
			header.InterState = v.IsInterState(company.StateCode)
		}
	}

	kind := string(header.Kind)
	ack, err := s.documents.SaveDocument(ctx, header, req.Lines)
	if err != nil {
		if _, ok := core.AsValidationError(err); ok {
			s.docMetrics.ObserveSave(kind, "invalid", 0)
		} else if errors.Is(err, core.ErrInvalidState) {
			s.docMetrics.ObserveSave(kind, "conflict", 0)
			s.logger.Warn().Err(err).Str("kind", kind).Str("company", req.CompanyCode).Msg("save document rejected")
		} else {
			s.docMetrics.ObserveSave(kind, "error", 0)
			s.logger.Error().Err(err).Str("kind", kind).Str("company", req.CompanyCode).Msg("save document failed")
		}
		return nil, err
	}
	s.docMetrics.ObserveSave(kind, "ok", ack.Totals.GrandTotal.InexactFloat64())
	return ack, nil
}

// GetDocument returns a saved document with its lines and totals.
func (s *appService) GetDocument(ctx context.Context, companyCode string, documentID int) (*core.Document, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return s.documents.FetchExistingDocument(ctx, company.ID, documentID)
}

// ListDocuments returns document headers with totals.
func (s *appService) ListDocuments(ctx context.Context, companyCode, kind, status string) (*DocumentListResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.GetDocuments(ctx, company.ID,
		core.DocumentKind(strings.ToUpper(kind)), core.DocumentStatus(strings.ToUpper(status)))
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Documents: docs, CompanyCode: companyCode}, nil
}

// PostDocument posts a DRAFT document and assigns its gapless number.
func (s *appService) PostDocument(ctx context.Context, companyCode string, documentID int) (*core.DocumentHeader, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	header, err := s.documents.PostDocument(ctx, company.ID, documentID)
	if err != nil {
		return nil, err
	}
	s.docMetrics.ObservePost(header.Kind.TypeCode())
	return header, nil
}

// LinkedItems returns the lines a GRN or invoice is seeded with, computed.
func (s *appService) LinkedItems(ctx context.Context, companyCode string, kind core.DocumentKind, parentID int) (*ComputeResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	lines, err := s.documents.FetchLinkedItems(ctx, company.ID, kind, parentID)
	if err != nil {
		return nil, err
	}
	return computeResult(lines), nil
}

// ReconcileDocuments recomputes every stored document and reports mismatches.
func (s *appService) ReconcileDocuments(ctx context.Context, companyCode string) (*ReconcileResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	issues, err := s.documents.ReconcileDocuments(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		s.logger.Warn().Int("issues", len(issues)).Str("company", companyCode).Msg("stored documents do not reconcile")
	}
	return &ReconcileResult{CompanyCode: companyCode, Issues: issues}, nil
}

// OpenForm starts an editing session for a new document dated today.
func (s *appService) OpenForm(ctx context.Context, companyCode string, kind core.DocumentKind, notify core.Notifier, loader core.Loader) (*core.FormSession, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	header := core.DocumentHeader{
		CompanyID:    company.ID,
		Kind:         kind,
		Status:       core.DocumentStatusDraft,
		DocumentDate: time.Now().Format("2006-01-02"),
	}
	return core.NewFormSession(header, s.documents, s.products, notify, loader), nil
}

// LookupProduct resolves a code or name prefix to a product.
func (s *appService) LookupProduct(ctx context.Context, companyCode, query string) (*core.Product, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return s.products.LookupProduct(ctx, company.ID, query)
}

// ListProducts returns all active products for a company.
func (s *appService) ListProducts(ctx context.Context, companyCode string) (*ProductListResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	products, err := s.products.GetProducts(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// ListVendors returns all active vendors for a company.
func (s *appService) ListVendors(ctx context.Context, companyCode string) (*VendorsResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendors.GetVendors(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	return &VendorsResult{Vendors: vendors}, nil
}

// GetVendor returns one vendor by code.
func (s *appService) GetVendor(ctx context.Context, companyCode, vendorCode string) (*VendorResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	v, err := s.vendors.GetVendorByCode(ctx, company.ID, vendorCode)
	if err != nil {
		return nil, err
	}
	return &VendorResult{Vendor: v}, nil
}

// CreateVendor creates a new vendor record for the given company.
func (s *appService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*VendorResult, error) {
	company, err := s.companies.GetByCode(ctx, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	v, err := s.vendors.CreateVendor(ctx, company.ID, core.VendorInput{
		Code:             req.Code,
		Name:             req.Name,
		GSTIN:            req.GSTIN,
		ContactPerson:    req.ContactPerson,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		PaymentTermsDays: req.PaymentTermsDays,
	})
	if err != nil {
		return nil, err
	}
	return &VendorResult{Vendor: v}, nil
}

// GetPurchaseOrder returns a single purchase order by its internal ID.
func (s *appService) GetPurchaseOrder(ctx context.Context, companyCode string, poID int) (*PurchaseOrderResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	po, err := s.orders.GetPO(ctx, company.ID, poID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// ListPurchaseOrders returns purchase orders for a company, optionally filtered by status.
func (s *appService) ListPurchaseOrders(ctx context.Context, companyCode, status string) (*PurchaseOrdersResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	pos, err := s.orders.GetPOs(ctx, company.ID, strings.ToUpper(status))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrdersResult{PurchaseOrders: pos}, nil
}

// CreatePurchaseOrder creates a new DRAFT purchase order.
func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	company, err := s.companies.GetByCode(ctx, req.CompanyCode)
	if err != nil {
		return nil, err
	}

	poDate := time.Now()
	if req.PODate != "" {
		poDate, err = time.Parse("2006-01-02", req.PODate)
		if err != nil {
			return nil, &core.ValidationError{Messages: []string{"PO date must be YYYY-MM-DD"}}
		}
	}

	lines := make([]core.PurchaseOrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.PurchaseOrderLineInput{
			ProductCode: l.ProductCode,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			GSTRate:     l.GSTRate,
		}
	}

	po, err := s.orders.CreatePO(ctx, company.ID, req.VendorCode, poDate, lines, req.Notes)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// ApprovePurchaseOrder transitions a DRAFT PO to APPROVED.
func (s *appService) ApprovePurchaseOrder(ctx context.Context, companyCode string, poID int) (*PurchaseOrderResult, error) {
	company, err := s.companies.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	po, err := s.orders.ApprovePO(ctx, company.ID, poID)
	if err != nil {
		return nil, err
	}
	s.docMetrics.ObservePost("PO")
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// ExtractLineItems asks the extractor for line items, then fills product master data
// for every row whose code is in the catalog.
func (s *appService) ExtractLineItems(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if s.extractor == nil {
		return nil, ErrAINotConfigured
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, &core.ValidationError{Messages: []string{"Document text is required"}}
	}
	kind := core.DocumentKind(strings.ToUpper(string(req.Kind)))
	if kind == "" {
		kind = core.KindInvoice
	}
	if !kind.Valid() {
		return nil, &core.ValidationError{Messages: []string{fmt.Sprintf("Unknown document kind %q", kind)}}
	}

	company, err := s.companies.GetByCode(ctx, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	interState := false
	if req.VendorCode != "" {
		v, err := s.vendors.GetVendorByCode(ctx, company.ID, req.VendorCode)
		if err != nil {
			return nil, err
		}
		interState = v.IsInterState(company.StateCode)
	}

	products, err := s.products.GetProducts(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	doc, err := s.extractor.ExtractLines(ctx, kind, req.Text, formatCatalog(products))
	if err != nil {
		s.logger.Error().Err(err).Str("company", req.CompanyCode).Msg("line extraction failed")
		return nil, fmt.Errorf("extract lines: %w", err)
	}

	inputs := doc.LineInputs(interState)
	var unresolved []int
	for i := range inputs {
		in := &inputs[i]
		if in.ProductCode == "" {
			unresolved = append(unresolved, i+1)
			continue
		}
		p, err := s.products.LookupProduct(ctx, company.ID, in.ProductCode)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				return nil, err
			}
			in.ProductCode = ""
			unresolved = append(unresolved, i+1)
			continue
		}
		in.ProductID = p.ID
		in.ProductCode = p.Code
		if in.UOM == "" {
			in.UOM = p.Unit
		}
		if in.HSNCode == "" {
			in.HSNCode = p.HSNCode
		}
		if !kind.AllowsDiscount() {
			in.Discount = ""
		}
	}

	s.logger.Info().Str("company", req.CompanyCode).Int("lines", len(inputs)).Int("unresolved", len(unresolved)).Msg("lines extracted")
	return &ExtractResult{
		ReferenceNo:  doc.ReferenceNo,
		VendorName:   doc.VendorName,
		DocumentDate: doc.DocumentDate,
		Inputs:       inputs,
		Computed:     computeResult(core.BuildLines(kind, inputs)),
		Unresolved:   unresolved,
	}, nil
}

// AuthenticateUser verifies credentials and returns a session on success.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	return &UserSession{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		CompanyID:   company.ID,
		CompanyCode: company.CompanyCode,
	}, nil
}

// GetUser returns user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		CompanyCode: company.CompanyCode,
		CompanyName: company.Name,
	}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

func computeResult(lines []core.LineItem) *ComputeResult {
	totals := core.Aggregate(lines)
	rollup := core.RollupUnits(lines)
	if lines == nil {
		lines = []core.LineItem{}
	}
	return &ComputeResult{
		Lines:      lines,
		Totals:     totals,
		Rollup:     rollup,
		RollupText: core.FormatRollup(rollup),
		Reconciles: totals.Reconciles(lines),
	}
}

// formatCatalog renders the product list for the extraction prompt.
func formatCatalog(products []core.Product) string {
	var b strings.Builder
	for _, p := range products {
		fmt.Fprintf(&b, "- %s %s (%s, GST %s%%)\n", p.Code, p.Name, p.Unit, p.GSTRate.String())
	}
	return b.String()
}
