package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solar-dashboard/internal/domain/auth"
	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
	"github.com/yanqian/solar-dashboard/internal/infra/config"
	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
	pkgmetrics "github.com/yanqian/solar-dashboard/pkg/metrics"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestRouter_HealthAndDefaults(t *testing.T) {
	server := newRouterUnderTest(t, &stubService{}, nil)

	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = performRequest(server, http.MethodGet, "/api/v1/defaults", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Input  dashboard.PredictionInput `json:"input"`
		Shapes []string                  `json:"shapes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, dashboard.DefaultInput(), body.Input)
	require.Contains(t, body.Shapes, "Hexagonal")
}

func TestRouter_DashboardSuccess(t *testing.T) {
	dash := dashboard.Dashboard{
		ID:            "id-1",
		HasPrediction: true,
		Current:       metrics.Snapshot{Qout: 250, Qloss: 50, Efficiency: 60},
		Trends:        metrics.ComputeTrends(metrics.Snapshot{}, metrics.Snapshot{Qout: 250, Qloss: 50, Efficiency: 60}).All(),
	}
	svc := &stubService{currentFn: func(context.Context) (dashboard.Dashboard, error) { return dash, nil }}

	rec := performRequest(newRouterUnderTest(t, svc, nil), http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	trends := raw["trends"].([]any)
	require.Len(t, trends, 3)
	require.Equal(t, "flat", trends[0].(map[string]any)["percent"])
}

func TestRouter_PredictMergesDefaults(t *testing.T) {
	svc := &stubService{
		predictFn: func(_ context.Context, input dashboard.PredictionInput) (dashboard.Dashboard, error) {
			require.Equal(t, "Circular", input.Shape)
			require.Equal(t, 900.0, input.SolarRadiation)
			require.Equal(t, dashboard.DefaultInput().CollectorArea, input.CollectorArea)
			return dashboard.Dashboard{ID: "id-9", HasPrediction: true}, nil
		},
	}

	rec := performRequest(newRouterUnderTest(t, svc, nil), http.MethodPost, "/api/v1/predictions", `{"shape":"Circular","solarRadiation":900}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.predictCalls)
}

func TestRouter_PredictInvalidJSON(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t, &stubService{}, nil), http.MethodPost, "/api/v1/predictions", `{"solarRadiation":"lots"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_PredictErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: apperrors.Wrap(apperrors.CodeInvalidInput, "unknown shape", nil), status: http.StatusBadRequest, code: "invalid_request"},
		{name: "predictor", err: apperrors.Wrap(apperrors.CodePredictorError, "prediction failed", nil), status: http.StatusBadGateway, code: "prediction_failed"},
		{name: "unknown", err: io.ErrUnexpectedEOF, status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{predictFn: func(context.Context, dashboard.PredictionInput) (dashboard.Dashboard, error) {
				return dashboard.Dashboard{}, tc.err
			}}
			rec := performRequest(newRouterUnderTest(t, svc, nil), http.MethodPost, "/api/v1/predictions", `{}`, "")
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_RecordSnapshot(t *testing.T) {
	svc := &stubService{
		recordFn: func(_ context.Context, s metrics.Snapshot) (dashboard.Dashboard, error) {
			require.Equal(t, metrics.Snapshot{Qout: 0, Qloss: 12.5, Efficiency: 40}, s)
			return dashboard.Dashboard{ID: "id-2", HasPrediction: true, Current: s}, nil
		},
	}
	rec := performRequest(newRouterUnderTest(t, svc, nil), http.MethodPost, "/api/v1/snapshots", `{"qout":0,"qloss":12.5,"efficiency":40}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(newRouterUnderTest(t, svc, nil), http.MethodPost, "/api/v1/snapshots", `{"qout":1,"qloss":2}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_History(t *testing.T) {
	svc := &stubService{
		historyFn: func(_ context.Context, limit int) ([]dashboard.HistoryEntry, error) {
			require.Equal(t, 5, limit)
			return []dashboard.HistoryEntry{{ID: "id-1", Source: dashboard.SourceManual}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/snapshots?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id-1"`)

	rec = performRequest(server, http.MethodGet, "/api/v1/snapshots?limit=abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WriteEndpointsRequireToken(t *testing.T) {
	tokens := auth.NewTokens(testSecret, "solar-dashboard")
	svc := &stubService{}
	server := newRouterUnderTest(t, svc, tokens)

	rec := performRequest(server, http.MethodPost, "/api/v1/snapshots", `{"qout":1,"qloss":1,"efficiency":1}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/snapshots", `{"qout":1,"qloss":1,"efficiency":1}`, "Bearer nope")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	signed, err := tokens.Issue("operator", time.Hour)
	require.NoError(t, err)
	rec = performRequest(server, http.MethodPost, "/api/v1/snapshots", `{"qout":1,"qloss":1,"efficiency":1}`, "Bearer "+signed)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	server := newRouterUnderTest(t, &stubService{}, nil)
	performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "")

	rec := performRequest(server, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `http_requests_total{route="/api/v1/dashboard",status="200"} 1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubService{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/predictions", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewHandler(&stubService{}, newTestLogger()), nil, nil)

	require.Equal(t, http.StatusOK, performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "").Code)
	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesTransientPredictFailures(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, Exclude: []string{"/api/v1/snapshots"}}
	svc := &stubService{}
	svc.predictFn = func(context.Context, dashboard.PredictionInput) (dashboard.Dashboard, error) {
		if svc.predictCalls < 1 {
			return dashboard.Dashboard{}, apperrors.Wrap(apperrors.CodePredictorError, "prediction failed", nil)
		}
		return dashboard.Dashboard{ID: "ok"}, nil
	}
	server := NewRouter(cfg, NewHandler(svc, newTestLogger()), nil, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/predictions", `{}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, svc.predictCalls)
}

func performRequest(server *http.Server, method, path, body, authorization string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc dashboard.Service, tokens *auth.Tokens) *http.Server {
	t.Helper()
	var validator TokenValidator
	if tokens != nil {
		validator = tokens
	}
	return NewRouter(testConfig(), NewHandler(svc, newTestLogger()), pkgmetrics.NewRecorder(), validator)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubService struct {
	predictFn    func(ctx context.Context, input dashboard.PredictionInput) (dashboard.Dashboard, error)
	recordFn     func(ctx context.Context, s metrics.Snapshot) (dashboard.Dashboard, error)
	currentFn    func(ctx context.Context) (dashboard.Dashboard, error)
	historyFn    func(ctx context.Context, limit int) ([]dashboard.HistoryEntry, error)
	predictCalls int
}

func (s *stubService) Predict(ctx context.Context, input dashboard.PredictionInput) (dashboard.Dashboard, error) {
	defer func() { s.predictCalls++ }()
	if s.predictFn != nil {
		return s.predictFn(ctx, input)
	}
	return dashboard.Dashboard{}, nil
}

func (s *stubService) Record(ctx context.Context, snapshot metrics.Snapshot) (dashboard.Dashboard, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, snapshot)
	}
	return dashboard.Dashboard{Current: snapshot}, nil
}

func (s *stubService) Current(ctx context.Context) (dashboard.Dashboard, error) {
	if s.currentFn != nil {
		return s.currentFn(ctx)
	}
	return dashboard.Dashboard{}, nil
}

func (s *stubService) History(ctx context.Context, limit int) ([]dashboard.HistoryEntry, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, limit)
	}
	return []dashboard.HistoryEntry{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
