package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func probe(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler(0)
	h.Register("postgres", down)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		postgres Checker
		redis    Checker
		kafka    Checker
		code     int
		status   Status
	}{
		{"all healthy", up, up, up, http.StatusOK, StatusUp},
		{"critical down", down, up, up, http.StatusServiceUnavailable, StatusDown},
		{"optional down", up, down, up, http.StatusOK, StatusDegraded},
		{"critical and optional down", down, down, down, http.StatusServiceUnavailable, StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(time.Second)
			h.Register("postgres", tt.postgres)
			h.RegisterOptional("redis", tt.redis)
			h.RegisterOptional("kafka", tt.kafka)

			code, resp := probe(t, h)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, resp.Status)
			assert.Len(t, resp.Checks, 3)
			assert.True(t, resp.Checks["postgres"].Critical)
			assert.False(t, resp.Checks["redis"].Critical)
		})
	}
}

func TestReadiness_ReportsError(t *testing.T) {
	h := NewHandler(0)
	h.RegisterOptional("redis", down)

	_, resp := probe(t, h)
	assert.Equal(t, StatusDown, resp.Checks["redis"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	assert.NotEmpty(t, resp.Checks["redis"].Latency)
}

func TestReadiness_NoChecksIsUp(t *testing.T) {
	code, resp := probe(t, NewHandler(0))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestReadiness_TimeoutBoundsSlowCheck(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)
	h.Register("postgres", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	code, resp := probe(t, h)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks["postgres"].Error, "deadline exceeded")
}

func TestReadiness_ChecksRunConcurrently(t *testing.T) {
	h := NewHandler(time.Second)
	var running, peak atomic.Int32
	slow := func(ctx context.Context) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return nil
	}
	h.Register("a", slow)
	h.Register("b", slow)
	h.Register("c", slow)

	_, resp := probe(t, h)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, int32(3), peak.Load())
}

func TestRegister_ReplacesAndNames(t *testing.T) {
	h := NewHandler(0)
	h.Register("redis", down)
	h.RegisterOptional("redis", up)
	h.Register("postgres", up)

	assert.Equal(t, []string{"postgres", "redis"}, h.Names())

	_, resp := probe(t, h)
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Checks["redis"].Critical)
}
