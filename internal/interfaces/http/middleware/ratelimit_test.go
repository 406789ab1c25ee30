package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubLimiter struct {
	allowed  bool
	err      error
	lastKey  string
	lastRate int
}

func (l *stubLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.lastKey = key
	l.lastRate = limit
	return l.allowed, l.err
}

func newRateLimitEngine(cfg RateLimitConfig, limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg, limiter))
	r.GET("/api/lessons", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitKeyByClientAndPath(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	r := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 5}, limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	req.RemoteAddr = "203.0.113.7:4242"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := "ratelimit:203.0.113.7:/api/lessons"
	if limiter.lastKey != want {
		t.Errorf("key = %q, want %q", limiter.lastKey, want)
	}
	if limiter.lastRate != 5 {
		t.Errorf("limit = %d, want 5", limiter.lastRate)
	}
}

func TestRateLimitRejectsWhenExceeded(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	r := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRateLimitPassesThroughOnLimiterError(t *testing.T) {
	limiter := &stubLimiter{err: context.DeadlineExceeded}
	r := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("limiter failure should not block requests, status = %d", w.Code)
	}
}
