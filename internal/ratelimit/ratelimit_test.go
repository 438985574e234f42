package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func hit(t *testing.T, l *Limiter, key string) Decision {
	t.Helper()
	d, err := l.Hit(context.Background(), key)
	require.NoError(t, err)
	return d
}

func TestLimiter_SlowDownSchedule(t *testing.T) {
	l := NewLimiter(DefaultOptions(), zap.NewNop())

	for i := 1; i <= 5; i++ {
		d := hit(t, l, "1.2.3.4")
		assert.True(t, d.Allowed)
		assert.Equal(t, i, d.Count)
		assert.Zero(t, d.Wait, "request %d", i)
	}
	assert.Equal(t, 500*time.Millisecond, hit(t, l, "1.2.3.4").Wait)
	assert.Equal(t, time.Second, hit(t, l, "1.2.3.4").Wait)
	assert.Equal(t, 1500*time.Millisecond, hit(t, l, "1.2.3.4").Wait)

	// другой ключ считается отдельно
	assert.Zero(t, hit(t, l, "5.6.7.8").Wait)
}

func TestLimiter_MaxDelayCapsWait(t *testing.T) {
	l := NewLimiter(Options{Limit: 200, Window: time.Minute, DelayAfter: 5, Delay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}, zap.NewNop())

	var last Decision
	for i := 0; i < 40; i++ {
		last = hit(t, l, "ip")
		assert.LessOrEqual(t, last.Wait, 2*time.Second)
	}
	assert.True(t, last.Allowed)
	assert.Equal(t, 2*time.Second, last.Wait)
}

func TestLimiter_QuotaAndReset(t *testing.T) {
	l := NewLimiter(Options{Limit: 3, Window: time.Minute}, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.True(t, hit(t, l, "ip").Allowed)
	}
	d := hit(t, l, "ip")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 4, d.Count)

	require.NoError(t, l.Reset(context.Background(), "ip"))
	d = hit(t, l, "ip")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 2, d.Remaining)
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := NewLimiter(Options{Limit: 1, Window: 100 * time.Millisecond}, zap.NewNop())

	require.True(t, hit(t, l, "ip").Allowed)
	require.False(t, hit(t, l, "ip").Allowed)

	time.Sleep(150 * time.Millisecond)
	assert.True(t, hit(t, l, "ip").Allowed)
}

func TestMiddleware_RejectsOverQuota(t *testing.T) {
	l := NewLimiter(Options{Limit: 2, Window: time.Minute}, zap.NewNop())
	var served int
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/read", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/read", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 60, retryAfter, 1)
	assert.Equal(t, 2, served)
}

func TestMiddleware_DelayHonoursContext(t *testing.T) {
	l := NewLimiter(Options{Limit: 10, Window: time.Minute, DelayAfter: 1, Delay: time.Hour}, zap.NewNop())
	var served int
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { served++ }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, served)
}

func TestMiddleware_KeysByForwardedAddress(t *testing.T) {
	l := NewLimiter(Options{Limit: 1, Window: time.Minute}, zap.NewNop())
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(xff string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("203.0.113.7, 10.0.0.3"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}
