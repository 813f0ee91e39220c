package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/application/service"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/domain/workflow"
	"github.com/wmartinez/presupuestos/internal/quote"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockQuoteService struct {
	generateFunc func(ctx context.Context, form entity.QuoteForm, mode string) (*service.GenerateResult, error)
	lastForm     entity.QuoteForm
	lastMode     string
}

func (m *mockQuoteService) Generate(ctx context.Context, form entity.QuoteForm, mode string) (*service.GenerateResult, error) {
	m.lastForm = form
	m.lastMode = mode
	if m.generateFunc != nil {
		return m.generateFunc(ctx, form, mode)
	}
	res := &service.GenerateResult{Mode: mode, Number: 7, Content: []byte("%PDF-fake"), Pages: 1}
	if mode == entity.ModeFinal {
		res.FileName = quote.FileName(7, form.ClientName)
		res.State = workflow.StateFinalized
	} else {
		res.State = workflow.StatePreview
	}
	return res, nil
}

func (m *mockQuoteService) NextNumber(ctx context.Context) (int, error) {
	return 7, nil
}

func (m *mockQuoteService) Status(ctx context.Context) service.StatusView {
	return service.StatusView{State: workflow.StateRejected, LastError: quote.MissingFieldsMessage, NextNumber: 7}
}

type mockRegisterService struct {
	downloadErr error
}

func (m *mockRegisterService) List(ctx context.Context, limit, offset int) (*service.RegisterPage, error) {
	return &service.RegisterPage{
		Quotes: []*entity.QuoteRecord{{Number: 1, ClientName: "Acme"}},
		Total:  1,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (m *mockRegisterService) Download(ctx context.Context, number int) (*entity.QuoteRecord, []byte, error) {
	if m.downloadErr != nil {
		return nil, nil, m.downloadErr
	}
	return &entity.QuoteRecord{Number: number, FileName: "Presupuesto_1_Acme.pdf"}, []byte("%PDF-saved"), nil
}

func (m *mockRegisterService) Export(ctx context.Context) ([]byte, error) {
	return []byte("PK-xlsx"), nil
}

type mockThumbnailer struct{}

func (mockThumbnailer) Render(ctx context.Context, content []byte, page int) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type mockHealth struct{ healthy bool }

func (m mockHealth) HealthReport(ctx context.Context) (bool, interface{}) {
	return m.healthy, map[string]bool{"database": m.healthy}
}

func newTestServer(qs service.QuoteService, rs service.RegisterService) *Server {
	return NewServer(DefaultServerConfig(), qs, rs, mockThumbnailer{}, mockHealth{healthy: true}, nopLogger{})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"client_name": "Acme",
		"date":        map[string]string{"day": "05", "month": "Mayo", "year": "2024"},
		"price":       "$500",
		"includes":    "materiales",
		"description": "Line1\nLine2",
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(&mockQuoteService{}, &mockRegisterService{})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	srv = NewServer(DefaultServerConfig(), &mockQuoteService{}, &mockRegisterService{}, nil, mockHealth{}, nopLogger{})
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateFinal_ReturnsAttachment(t *testing.T) {
	qs := &mockQuoteService{}
	srv := newTestServer(qs, &mockRegisterService{})

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", jsonBody(t, validRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Presupuesto_7_Acme.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "7", w.Header().Get(headerQuoteNumber))
	assert.Equal(t, "1", w.Header().Get(headerQuotePages))
	assert.Equal(t, "0", w.Header().Get(headerDroppedLines))
	assert.Equal(t, "%PDF-fake", w.Body.String())

	assert.Equal(t, entity.ModeFinal, qs.lastMode)
	assert.Equal(t, "Mayo", qs.lastForm.Date.Month)
}

func TestGeneratePreview_FormEncodedWithFilters(t *testing.T) {
	qs := &mockQuoteService{}
	srv := newTestServer(qs, &mockRegisterService{})

	form := url.Values{
		"client_name": {"Acme"},
		"day":         {"5x12"},
		"month":       {"Ma3yo"},
		"year":        {"20245"},
		"price":       {"$500"},
		"includes":    {"materiales"},
		"description": {"Line1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inline", w.Header().Get("Content-Disposition"))
	assert.Equal(t, entity.ModePreview, qs.lastMode)
	assert.Equal(t, entity.QuoteDate{Day: "51", Month: "Mayo", Year: "2024"}, qs.lastForm.Date)
}

func TestGeneratePreview_PNG(t *testing.T) {
	srv := newTestServer(&mockQuoteService{}, &mockRegisterService{})

	req := httptest.NewRequest(http.MethodPost, "/api/quotes/preview?format=png", jsonBody(t, validRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypePNG, w.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodPost, "/api/quotes/preview?format=png&page=3", jsonBody(t, validRequest()))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing fields", &quote.MissingFieldsError{Fields: []string{"price"}}, http.StatusUnprocessableEntity, quote.MissingFieldsMessage},
		{"in progress", service.ErrGenerationInProgress, http.StatusConflict, "ya se está generando un presupuesto"},
		{"asset load", quote.ErrAssetLoad, http.StatusInternalServerError, service.AssetLoadMessage},
		{"render", quote.ErrRenderFailed, http.StatusInternalServerError, service.RenderFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := &mockQuoteService{generateFunc: func(ctx context.Context, form entity.QuoteForm, mode string) (*service.GenerateResult, error) {
				return nil, tt.err
			}}
			srv := newTestServer(qs, &mockRegisterService{})

			req := httptest.NewRequest(http.MethodPost, "/api/quotes", jsonBody(t, validRequest()))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestGenerate_BadBody(t *testing.T) {
	srv := newTestServer(&mockQuoteService{}, &mockRegisterService{})

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextNumberAndStatus(t *testing.T) {
	srv := newTestServer(&mockQuoteService{}, &mockRegisterService{})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/next-number", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"next_number":7}}`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "REJECTED", data["state"])
	assert.Equal(t, quote.MissingFieldsMessage, data["last_error"])
}

func TestRegisterEndpoints(t *testing.T) {
	rs := &mockRegisterService{}
	srv := newTestServer(&mockQuoteService{}, rs)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes?limit=10&offset=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(10), data["limit"])
	assert.Equal(t, float64(5), data["offset"])

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/1/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-saved", w.Body.String())
	assert.Equal(t, "attachment; filename=Presupuesto_1_Acme.pdf", w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/abc/download", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rs.downloadErr = errors.Join(errors.New("quote 9"), port.ErrNotFound)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/9/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/register.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
}

func TestAttachment_EncodesNonASCII(t *testing.T) {
	assert.Equal(t, "attachment; filename*=utf-8''Presupuesto_1_Juan%20P%C3%A9rez.pdf",
		attachment("Presupuesto_1_Juan Pérez.pdf"))
}
