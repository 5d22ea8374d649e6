package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agbru/fanout/internal/metrics"
)

var hardeningHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// requestsServed reads fanout_requests_total from the registry backing m.
func requestsServed(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "fanout_requests_total" && len(mf.GetMetric()) == 1 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatal("fanout_requests_total not registered")
	return 0
}

func assertHardened(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for name, want := range hardeningHeaders {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestServerRoutes_Security(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		origin     string
		wantStatus int
		wantCORS   bool
		wantServed float64
	}{
		{
			name:       "preflight on healthz stops before the handlers",
			method:     http.MethodOptions,
			path:       "/healthz",
			origin:     "https://grafana.example",
			wantStatus: http.StatusNoContent,
			wantCORS:   true,
			wantServed: 0,
		},
		{
			name:       "preflight on metrics without origin",
			method:     http.MethodOptions,
			path:       "/metrics",
			wantStatus: http.StatusNoContent,
			wantCORS:   true,
			wantServed: 0,
		},
		{
			name:       "post to metrics is rejected but hardened",
			method:     http.MethodPost,
			path:       "/metrics",
			wantStatus: http.StatusMethodNotAllowed,
			wantCORS:   true,
			wantServed: 1,
		},
		{
			name:       "cross-origin health check",
			method:     http.MethodGet,
			path:       "/healthz",
			origin:     "https://grafana.example",
			wantStatus: http.StatusOK,
			wantCORS:   true,
			wantServed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewMetrics()
			s := NewServer("127.0.0.1:0", m, newTestLogger())

			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			assertHardened(t, rec)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); (got == "*") != tt.wantCORS {
				t.Errorf("Access-Control-Allow-Origin = %q, want CORS %v", got, tt.wantCORS)
			}
			if got := requestsServed(t, m); got != tt.wantServed {
				t.Errorf("fanout_requests_total = %v, want %v", got, tt.wantServed)
			}
		})
	}
}

func TestSecurityMiddleware_Origins(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{"listed origin is echoed", []string{"https://ops.example"}, "https://ops.example", "https://ops.example"},
		{"unlisted origin gets nothing", []string{"https://ops.example"}, "https://evil.example", ""},
		{"missing origin gets nothing", []string{"https://ops.example"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SecurityConfig{
				EnableCORS:     true,
				AllowedOrigins: tt.allowed,
				AllowedMethods: []string{http.MethodGet},
			}
			served := false
			h := SecurityMiddleware(cfg, func(w http.ResponseWriter, _ *http.Request) { served = true })

			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			if !served {
				t.Error("GET should reach the wrapped handler")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Methods") != "GET" {
				t.Errorf("Access-Control-Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestSecurityMiddleware_CORSDisabled(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.EnableCORS = false
	h := SecurityMiddleware(cfg, func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	req.Header.Set("Origin", "https://ops.example")
	rec := httptest.NewRecorder()
	h(rec, req)

	assertHardened(t, rec)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS disabled but Access-Control-Allow-Origin = %q", got)
	}
}
