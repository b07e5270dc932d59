package web

import (
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/app"
	"backoffice/internal/core"
)

// documentBody is the JSON shape shared by compute, validate and save.
type documentBody struct {
	Header core.DocumentHeader `json:"header"`
	Lines  []core.LineInput    `json:"lines"`
}

func (b documentBody) request(companyCode string) app.DocumentRequest {
	b.Header.Kind = core.DocumentKind(strings.ToUpper(string(b.Header.Kind)))
	return app.DocumentRequest{CompanyCode: companyCode, Header: b.Header, Lines: b.Lines}
}

// apiComputeDocument handles POST /api/companies/{code}/documents/compute.
// It never persists; every unparsable number is computed as zero.
func (h *Handler) apiComputeDocument(w http.ResponseWriter, r *http.Request) {
	var body documentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.ComputeDocument(r.Context(), body.request(companyCode(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiValidateDocument handles POST /api/companies/{code}/documents/validate.
func (h *Handler) apiValidateDocument(w http.ResponseWriter, r *http.Request) {
	var body documentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.ValidateDocument(r.Context(), body.request(companyCode(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSaveDocument handles POST /api/companies/{code}/documents.
func (h *Handler) apiSaveDocument(w http.ResponseWriter, r *http.Request) {
	var body documentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	ack, err := h.svc.SaveDocument(r.Context(), body.request(companyCode(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, ack)
}

// apiListDocuments handles GET /api/companies/{code}/documents?kind=&status=.
func (h *Handler) apiListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListDocuments(r.Context(), companyCode(r), q.Get("kind"), q.Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetDocument handles GET /api/companies/{code}/documents/{id}.
func (h *Handler) apiGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "document ID")
	if !ok {
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), companyCode(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

// apiPostDocument handles POST /api/companies/{code}/documents/{id}/post.
func (h *Handler) apiPostDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "document ID")
	if !ok {
		return
	}
	header, err := h.svc.PostDocument(r.Context(), companyCode(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, header)
}

// apiLinkedItems handles GET /api/companies/{code}/documents/linked?kind=GRN&parent_id=.
func (h *Handler) apiLinkedItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := core.DocumentKind(strings.ToUpper(q.Get("kind")))
	if !kind.Valid() {
		writeError(w, r, "kind must be GRN, INVOICE or BOM", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	parentID, err := strconv.Atoi(q.Get("parent_id"))
	if err != nil || parentID <= 0 {
		writeError(w, r, "invalid parent_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.LinkedItems(r.Context(), companyCode(r), kind, parentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReconcileDocuments handles GET /api/companies/{code}/documents/reconcile.
func (h *Handler) apiReconcileDocuments(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ReconcileDocuments(r.Context(), companyCode(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
