package web

import (
	"fmt"
	"net/http"
	"strings"

	"backoffice/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// apiListProducts handles GET /api/companies/{code}/products.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context(), companyCode(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiLookupProduct handles GET /api/companies/{code}/products/lookup?q=.
func (h *Handler) apiLookupProduct(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, "q is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	p, err := h.svc.LookupProduct(r.Context(), companyCode(r), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiListVendors handles GET /api/companies/{code}/vendors.
func (h *Handler) apiListVendors(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListVendors(r.Context(), companyCode(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetVendor handles GET /api/companies/{code}/vendors/{vendorCode}.
func (h *Handler) apiGetVendor(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetVendor(r.Context(), companyCode(r), chi.URLParam(r, "vendorCode"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Vendor)
}

// apiCreateVendor handles POST /api/companies/{code}/vendors.
func (h *Handler) apiCreateVendor(w http.ResponseWriter, r *http.Request) {
	var req app.CreateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyCode = companyCode(r)
	if req.PaymentTermsDays == 0 {
		req.PaymentTermsDays = 30
	}

	result, err := h.svc.CreateVendor(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Vendor)
}

// apiListPurchaseOrders handles GET /api/companies/{code}/purchase-orders?status=.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), companyCode(r), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreatePurchaseOrder handles POST /api/companies/{code}/purchase-orders.
// Numbers arrive as strings; unit_cost and gst_rate may be omitted to take product defaults.
func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VendorCode string `json:"vendor_code"`
		PODate     string `json:"po_date"`
		Notes      string `json:"notes"`
		Lines      []struct {
			ProductCode string `json:"product_code"`
			Description string `json:"description"`
			Quantity    string `json:"quantity"`
			UnitCost    string `json:"unit_cost"`
			GSTRate     string `json:"gst_rate"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.CreatePurchaseOrderRequest{
		CompanyCode: companyCode(r),
		VendorCode:  body.VendorCode,
		PODate:      body.PODate,
		Notes:       body.Notes,
	}
	for i, l := range body.Lines {
		qty, err := decimal.NewFromString(strings.TrimSpace(l.Quantity))
		if err != nil {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		line := app.POLineInput{ProductCode: l.ProductCode, Description: l.Description, Quantity: qty}
		if s := strings.TrimSpace(l.UnitCost); s != "" {
			if line.UnitCost, err = decimal.NewFromString(s); err != nil {
				writeError(w, r, fmt.Sprintf("line %d: invalid unit_cost", i+1), "BAD_REQUEST", http.StatusBadRequest)
				return
			}
		}
		if s := strings.TrimSpace(l.GSTRate); s != "" {
			rate, err := decimal.NewFromString(s)
			if err != nil {
				writeError(w, r, fmt.Sprintf("line %d: invalid gst_rate", i+1), "BAD_REQUEST", http.StatusBadRequest)
				return
			}
			line.GSTRate = &rate
		}
		req.Lines = append(req.Lines, line)
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.PurchaseOrder)
}

// apiGetPurchaseOrder handles GET /api/companies/{code}/purchase-orders/{id}.
func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	poID, ok := intParam(w, r, "id", "purchase order ID")
	if !ok {
		return
	}
	result, err := h.svc.GetPurchaseOrder(r.Context(), companyCode(r), poID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.PurchaseOrder)
}

// apiApprovePO handles POST /api/companies/{code}/purchase-orders/{id}/approve.
func (h *Handler) apiApprovePO(w http.ResponseWriter, r *http.Request) {
	poID, ok := intParam(w, r, "id", "purchase order ID")
	if !ok {
		return
	}
	result, err := h.svc.ApprovePurchaseOrder(r.Context(), companyCode(r), poID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.PurchaseOrder)
}

// apiExtractLines handles POST /api/companies/{code}/ai/extract-lines.
// Returns 501 when no OpenAI key is configured.
func (h *Handler) apiExtractLines(w http.ResponseWriter, r *http.Request) {
	var req app.ExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyCode = companyCode(r)

	result, err := h.svc.ExtractLineItems(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
