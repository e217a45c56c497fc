package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/solar-dashboard/internal/infra/config"
)

func TestIPRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	_, ok := limiter.allow("10.0.0.1")
	require.True(t, ok)
	_, ok = limiter.allow("10.0.0.1")
	require.True(t, ok)
	wait, ok := limiter.allow("10.0.0.1")
	require.False(t, ok)
	assert.Equal(t, time.Second, wait)

	_, ok = limiter.allow("10.0.0.2")
	require.True(t, ok, "buckets are per ip")

	now = now.Add(time.Second)
	_, ok = limiter.allow("10.0.0.1")
	require.True(t, ok)
}

func TestIPRateLimiterSweepsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 10, Burst: 1}, func() time.Time { return now })
	limiter.allow("10.0.0.1")

	now = now.Add(10 * time.Minute)
	limiter.allow("10.0.0.2")
	require.Len(t, limiter.visitors, 1)
	require.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestPathMatcher(t *testing.T) {
	m := newPathMatcher([]string{"/api/v1/snapshots", "/internal/*"})
	assert.True(t, m.match("/api/v1/snapshots"))
	assert.False(t, m.match("/api/v1/snapshots/extra"))
	assert.True(t, m.match("/internal/replay"))
	assert.False(t, m.match("/api/v1/predictions"))
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	var bodies []string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		bodies = append(bodies, buf.String())
		w.Header().Set("X-Attempt", strings.Repeat("x", calls))
		w.WriteHeader(http.StatusBadGateway)
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"shape":"Flat"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 3, calls)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "xxx", rec.Header().Get("X-Attempt"))
	require.Equal(t, []string{`{"shape":"Flat"}`, `{"shape":"Flat"}`, `{"shape":"Flat"}`}, bodies)
}

func TestWithRetrySkipsExcludedAndNonPost(t *testing.T) {
	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, Exclude: []string{"/api/v1/snapshots"}}, newTestLogger())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(`{}`)))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, 2, calls)
}

func TestWithRetryRejectsOversizedBody(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 2}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/predictions", bytes.NewReader(make([]byte, retryBodyLimit+1))))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	_, ok := resolveOrigin("https://evil.example", []string{"https://dashboard.example"})
	assert.False(t, ok)
	origin, ok := resolveOrigin("https://dashboard.example", []string{"https://dashboard.example"})
	assert.True(t, ok)
	assert.Equal(t, "https://dashboard.example", origin)
}
