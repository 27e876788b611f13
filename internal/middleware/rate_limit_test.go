package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(10, 5, zerolog.Nop())
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("key:a"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("key:a"), "request beyond burst should be limited")
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiter(10, 3, zerolog.Nop())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("key:a"))
	}
	assert.False(t, rl.Allow("key:a"))

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("key:b"))
	}
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10, 3, zerolog.Nop())
	defer rl.Stop()

	rl.Allow("key:a")
	rl.Allow("key:b")

	rl.sweep(time.Now())
	assert.Equal(t, 2, rl.Len())

	rl.sweep(time.Now().Add(LimiterTTL + time.Second))
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(10, 3, zerolog.Nop())

	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(60, 2, zerolog.Nop())
	defer rl.Stop()

	calls := 0
	handler := RateLimit(rl, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-API-Key", key)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("/api/coupons/validate", "k1").Code)
	assert.Equal(t, http.StatusOK, send("/api/coupons/validate", "k1").Code)

	w := send("/api/coupons/validate", "k1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeRateLimited, resp.Error)

	// Other clients and the health check are unaffected.
	assert.Equal(t, http.StatusOK, send("/api/coupons/validate", "k2").Code)
	assert.Equal(t, http.StatusOK, send("/health", "k1").Code)
	assert.Equal(t, 4, calls)
}

func TestRateLimit_NilLimiterDisabled(t *testing.T) {
	handler := RateLimit(nil, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "addr:10.0.0.7", clientKey(req))

	req.Header.Set("X-API-Key", "k1")
	assert.Equal(t, "key:k1", clientKey(req))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "unix"
	assert.Equal(t, "addr:unix", clientKey(req))
}
