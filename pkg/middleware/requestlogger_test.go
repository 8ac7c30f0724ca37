package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/addressbook/pkg/logger"
)

func newTestLogger(w *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("addressbook-test", "info", w)
}

func logOnce(t *testing.T, ctx context.Context, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := RequestLogger(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler log")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_StoresEnrichedLogger(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	out := logOnce(t, ctx, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "handler log", out["msg"])
	assert.Equal(t, "corr-1", out["correlation_id"])
	assert.Equal(t, "addressbook-test", out["service"])
}

func TestRequestLogger_UserIDFromAuthContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), userIDKey, "user-from-auth")
	out := logOnce(t, ctx, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "user-from-auth", out["user_id"])
}

func TestRequestLogger_IgnoresClientUserHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "spoofed")
	out := logOnce(t, context.Background(), req)

	_, ok := out["user_id"]
	assert.False(t, ok)
}

func TestRequestLogger_TraceFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	out := logOnce(t, ctx, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", out["trace_id"])
	assert.Equal(t, "0102030405060708", out["span_id"])
}
