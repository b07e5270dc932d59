package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"backoffice/internal/app"
	"backoffice/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the HTTP handler.
type Options struct {
	AllowedOrigins []string
	JWTSecret      string
	Logger         zerolog.Logger
	Metrics        *metrics.HTTPMetrics // nil disables request metrics
	MetricsHandler http.Handler         // served at /metrics; defaults to promhttp.Handler()
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	logger    zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		logger:    opts.Logger,
	}

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestMetrics(opts.Metrics))
	r.Use(RequestLogger(opts.Logger))
	r.Use(Recoverer(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Handle("/metrics", metricsHandler)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		r.Route("/api/companies/{code}", func(r chi.Router) {
			// ── Documents (GRN, invoice, BOM) ─────────────────────────────────
			r.Post("/documents/compute", h.apiComputeDocument)
			r.Post("/documents/validate", h.apiValidateDocument)
			r.Get("/documents/linked", h.apiLinkedItems)
			r.Get("/documents/reconcile", h.apiReconcileDocuments)
			r.Get("/documents", h.apiListDocuments)
			r.Post("/documents", h.apiSaveDocument)
			r.Get("/documents/{id}", h.apiGetDocument)
			r.Post("/documents/{id}/post", h.apiPostDocument)

			// ── Master data ───────────────────────────────────────────────────
			r.Get("/products", h.apiListProducts)
			r.Get("/products/lookup", h.apiLookupProduct)
			r.Get("/vendors", h.apiListVendors)
			r.Post("/vendors", h.apiCreateVendor)
			r.Get("/vendors/{vendorCode}", h.apiGetVendor)

			// ── Purchase orders ───────────────────────────────────────────────
			r.Get("/purchase-orders", h.apiListPurchaseOrders)
			r.Post("/purchase-orders", h.apiCreatePurchaseOrder)
			r.Get("/purchase-orders/{id}", h.apiGetPurchaseOrder)
			r.Post("/purchase-orders/{id}/approve", h.apiApprovePO)

			// ── AI ────────────────────────────────────────────────────────────
			r.Post("/ai/extract-lines", h.apiExtractLines)
		})
	})

	h.router = r
	return r
}

// health returns service status and the loaded company code.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.LoadDefaultCompany(r.Context())
	companyCode := ""
	if err == nil && company != nil {
		companyCode = company.CompanyCode
	}

	type response struct {
		Status  string `json:"status"`
		Company string `json:"company"`
	}

	writeJSON(w, response{Status: "ok", Company: companyCode})
}

// companyCode extracts the {code} URL parameter.
func companyCode(r *http.Request) string {
	return chi.URLParam(r, "code")
}

// intParam parses a numeric URL parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name, label string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+label, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
