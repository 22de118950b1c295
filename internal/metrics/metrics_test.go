package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LoginAttempt("google", true)
		m.ProviderCall("google", "exchange", errors.New("x"))
		m.AuditWriteFailed()
		m.AuditPurged(3)
	})
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	assert.NotNil(t, h)
}

func TestCounters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.AuditWriteFailed()
	m.AuditWriteFailed()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.auditWriteFailures))

	m.LoginAttempt("google", true)
	m.LoginAttempt("google", false)
	m.LoginAttempt("google", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues("google", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues("google", "failure")))

	m.AuditPurged(0)
	m.AuditPurged(5)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.auditPurgedTotal))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/connections/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(
		m.httpRequestsTotal.WithLabelValues("GET", "/api/connections/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "authhub_http_requests_total"))
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                           "/",
		"/":                          "/",
		"/api/connections/42":        "/api/connections/:param",
		"/api/connections/42/revoke": "/api/connections/:param/revoke",
		"/healthz?x=1":               "/healthz",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), in)
	}
}
