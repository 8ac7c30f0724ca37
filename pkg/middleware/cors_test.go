package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("reached"))
	}))

	req := httptest.NewRequest(method, "/api/users/addresses", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_AllowOrigin(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://app.example.com", "https://admin.example.com"},
		Environment:    "production",
	}

	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{"dev wildcard", DefaultCORSConfig(), "https://anything.test", "*"},
		{"dev without origin", DefaultCORSConfig(), "", "*"},
		{"prod allowed", prod, "https://app.example.com", "https://app.example.com"},
		{"prod second allowed", prod, "https://admin.example.com", "https://admin.example.com"},
		{"prod rejected", prod, "https://evil.test", ""},
		{"prod without origin", prod, "", ""},
		{"explicit wildcard in prod", CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"}, "https://x.test", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCORS(tt.cfg, http.MethodGet, tt.origin, false)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCORS_VaryOnMatchedOrigin(t *testing.T) {
	rec := serveCORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}, http.MethodGet, "https://app.example.com", false)
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_Preflight(t *testing.T) {
	rec := serveCORS(DefaultCORSConfig(), http.MethodOptions, "https://app.example.com", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PlainOptionsReachesHandler(t *testing.T) {
	rec := serveCORS(DefaultCORSConfig(), http.MethodOptions, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reached", rec.Body.String())
}

func TestCORS_CustomSettings(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowedHeaders:   []string{"Authorization", "X-Custom"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		MaxAge:           7200,
		AllowCredentials: true,
		Environment:      "production",
	}
	rec := serveCORS(cfg, http.MethodGet, "https://app.example.com", false)

	assert.Equal(t, "Authorization, X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "7200", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedHeaders, "Authorization")
	assert.NotContains(t, cfg.AllowedHeaders, "X-User-ID")
	assert.Equal(t, "development", cfg.Environment)
}
