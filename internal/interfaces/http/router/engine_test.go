package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reconciliationapp "github.com/erp/reconciler/internal/application/reconciliation"
	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/handler"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubIntegrator struct{}

func (stubIntegrator) Integrate(_ context.Context, _ *reconciliationapp.IntegrationRequest) (*reconciliationapp.IntegrationResponse, error) {
	return &reconciliationapp.IntegrationResponse{Success: true}, nil
}

func (stubIntegrator) Classify(_ context.Context, _, _ string) reconciliationapp.ClassificationResult {
	return reconciliationapp.ClassificationResult{
		EntityType:  reconciliation.EntityTypeSupplier,
		PaymentKind: reconciliation.PaymentKindOther,
	}
}

type upPinger struct{}

func (upPinger) Ping(context.Context) error { return nil }

func newTestEngine(t *testing.T, maxBody int64) (*observer.ObservedLogs, http.Handler) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	engine := NewEngine(EngineConfig{
		Logger:         zap.New(core),
		Reconciliation: handler.NewReconciliationHandler(stubIntegrator{}),
		System:         handler.NewSystemHandler(upPinger{}, "test"),
		MaxBodyBytes:   maxBody,
	})
	return logs, engine
}

func TestNewEngine_Routes(t *testing.T) {
	_, engine := newTestEngine(t, 0)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/system/ping", "", http.StatusOK},
		{http.MethodGet, "/api/v1/system/info", "", http.StatusOK},
		{http.MethodGet, "/api/v1/finance/expenses/classification?category=Vendor+Payments", "", http.StatusOK},
		{
			http.MethodPost,
			"/api/v1/finance/expenses/5a0f3c2e-9a57-4a4e-8d5e-2f0b8f1c6a11/integrations",
			`{"amount":"10","date":"2024-05-01","description":"Paper"}`,
			http.StatusOK,
		},
		{http.MethodGet, "/api/v1/finance/expenses/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDKey))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestNewEngine_LogsRequestsWithRequestID(t *testing.T) {
	logs, engine := newTestEngine(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDKey, "req-engine-1")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-engine-1", entries[0].ContextMap()["request_id"])
}

func TestNewEngine_BodyLimit(t *testing.T) {
	_, engine := newTestEngine(t, 64)

	body := `{"amount":"10","date":"2024-05-01","description":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/expenses/5a0f3c2e-9a57-4a4e-8d5e-2f0b8f1c6a11/integrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
}
