package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/app"
	"backoffice/internal/core"
	"backoffice/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stubService computes with the real application service (which needs no storage for
// compute and validate) and stubs everything that would touch the database.
type stubService struct {
	app.ApplicationService
	saveErr error
	postErr error
	session *app.UserSession
}

func newStubService() *stubService {
	base := app.NewAppService(nil, nil, nil, nil, nil, nil, nil, nil, "", zerolog.Nop())
	return &stubService{ApplicationService: base}
}

func (s *stubService) LoadDefaultCompany(context.Context) (*core.Company, error) {
	return &core.Company{ID: 1, CompanyCode: "1000"}, nil
}

func (s *stubService) SaveDocument(_ context.Context, req app.DocumentRequest) (*core.SaveAck, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	lines := core.BuildLines(req.Header.Kind, req.Lines)
	if err := core.ValidateForSubmit(req.Header, lines); err != nil {
		return nil, err
	}
	return &core.SaveAck{DocumentID: 42, Status: core.DocumentStatusDraft, Totals: core.Aggregate(lines), LineCount: len(lines)}, nil
}

func (s *stubService) PostDocument(_ context.Context, _ string, id int) (*core.DocumentHeader, error) {
	if s.postErr != nil {
		return nil, s.postErr
	}
	number := "GR-2026-27-00001"
	return &core.DocumentHeader{ID: id, Kind: core.KindGRN, Status: core.DocumentStatusPosted, DocumentNumber: &number}, nil
}

func (s *stubService) GetDocument(_ context.Context, _ string, id int) (*core.Document, error) {
	return nil, fmt.Errorf("document %d: %w", id, core.ErrNotFound)
}

func (s *stubService) ExtractLineItems(context.Context, app.ExtractRequest) (*app.ExtractResult, error) {
	return nil, app.ErrAINotConfigured
}

func (s *stubService) AuthenticateUser(_ context.Context, username, password string) (*app.UserSession, error) {
	if s.session == nil || username != s.session.Username || password != "pw" {
		return nil, core.ErrInvalidCredentials
	}
	return s.session, nil
}

type testServer struct {
	handler http.Handler
	svc     *stubService
	metrics *metrics.HTTPMetrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(reg)
	svc := newStubService()
	h := NewHandler(svc, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		JWTSecret:      testSecret,
		Logger:         zerolog.Nop(),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &testServer{handler: h, svc: svc, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, err := issueToken(testSecret, &app.UserSession{UserID: 1, CompanyID: 1, Role: "ADMIN"}, time.Now())
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func grnBody(lines ...core.LineInput) map[string]any {
	return map[string]any{
		"header": map[string]any{
			"kind":          "grn",
			"reference_no":  "DC-1001",
			"vendor_code":   "V001",
			"location_code": "WH1",
			"document_date": "2026-05-04",
		},
		"lines": lines,
	}
}

func TestHealth_Public(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","company":"1000"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents/compute", grnBody(), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoute_AcceptsBearerToken(t *testing.T) {
	s := newTestServer(t)
	token, err := issueToken(testSecret, &app.UserSession{UserID: 1, CompanyID: 1, Role: "ADMIN"}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/1000/documents/9", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, "authenticated request reaches the handler")

	req = httptest.NewRequest(http.MethodGet, "/api/companies/1000/documents/9", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestComputeDocument_Totals(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents/compute", grnBody(
		core.LineInput{ProductCode: "STL-10", UOM: "kg", Quantity: "2", UnitPrice: "100", CGSTPercent: "9", SGSTPercent: "9"},
		core.LineInput{ProductCode: "BLT-M8", UOM: "pcs", Quantity: "3", UnitPrice: "oops"},
	), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got app.ComputeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "200.00", got.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", got.Totals.TotalTax.StringFixed(2))
	assert.Equal(t, "236.00", got.Totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "2 kg, 3 pcs", got.RollupText)
	assert.True(t, got.Reconciles)

	route := "/api/companies/{code}/documents/compute"
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ReqTotal.WithLabelValues(http.MethodPost, route, "200")))
}

func TestValidateDocument_Returns422(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents/validate", grnBody(
		core.LineInput{ProductCode: "STL-10", Quantity: "3", UnitPrice: "10", IsSerialNumberApplicable: true, SerialNumbers: "A1,A2"},
	), true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, []string{"Row 1: 2 serial number(s) entered but 3 received"}, body.Messages)
	assert.NotEmpty(t, body.RequestID)
}

func TestSaveDocument_Created(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents", grnBody(
		core.LineInput{ProductCode: "STL-10", Quantity: "2", UnitPrice: "100", CGSTPercent: "9", SGSTPercent: "9"},
	), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ack core.SaveAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, 42, ack.DocumentID)
	assert.Equal(t, "236.00", ack.Totals.GrandTotal.StringFixed(2))
}

func TestSaveDocument_InvalidLinesReturn422(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents", grnBody(
		core.LineInput{Quantity: "-2", UnitPrice: "100"},
	), true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Messages, "Row 1: product is required")
	assert.Contains(t, body.Messages, "Row 1: quantity must not be negative")
}

func TestSaveDocument_StoreFailureIs500(t *testing.T) {
	s := newTestServer(t)
	s.svc.saveErr = fmt.Errorf("insert document: connection refused")

	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents", grnBody(
		core.LineInput{ProductCode: "STL-10", Quantity: "1", UnitPrice: "1"},
	), true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSaveDocument_PostedDocumentIs409(t *testing.T) {
	s := newTestServer(t)
	s.svc.saveErr = fmt.Errorf("%w: document 7 cannot be edited: status is POSTED (must be DRAFT)", core.ErrInvalidState)

	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents", grnBody(
		core.LineInput{ProductCode: "STL-10", Quantity: "1", UnitPrice: "1"},
	), true)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Code)
	assert.Contains(t, body.Error, "status is POSTED (must be DRAFT)")
}

func TestPostDocument_StateConflict(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/documents/7/post", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.svc.postErr = fmt.Errorf("%w: document 7 must be in DRAFT status to be posted, current status: POSTED", core.ErrInvalidState)
	rec = s.do(t, http.MethodPost, "/api/companies/1000/documents/7/post", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "current status: POSTED")
}

func TestGetDocument_Errors(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/companies/1000/documents/9", nil, true).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/companies/1000/documents/abc", nil, true).Code)
}

func TestLinkedItems_BadQuery(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/companies/1000/documents/linked?kind=PO&parent_id=1", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/companies/1000/documents/linked?kind=GRN", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractLines_NotConfigured(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/companies/1000/ai/extract-lines", map[string]string{"text": "x"}, true)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.svc.session = &app.UserSession{UserID: 3, Username: "buyer", Role: "PURCHASER", CompanyID: 1, CompanyCode: "1000"}

	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "buyer", "password": "pw"}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	claims, err := parseToken(testSecret, cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, "PURCHASER", claims.Role)

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "buyer", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseToken_RejectsOtherSecret(t *testing.T) {
	token, err := issueToken("other", &app.UserSession{UserID: 1}, time.Now())
	require.NoError(t, err)
	_, err = parseToken(testSecret, token)
	assert.Error(t, err)

	expired, err := issueToken(testSecret, &app.UserSession{UserID: 1}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = parseToken(testSecret, expired)
	assert.Error(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/health", nil, false)

	rec := s.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_http_requests_total")
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
