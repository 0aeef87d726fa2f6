package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"choreshare/internal/security"
)

type stubLimiter struct {
	decision security.RateDecision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (security.RateDecision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRateLimitRejects(t *testing.T) {
	limiter := &stubLimiter{decision: security.RateDecision{RetryAfter: 1500 * time.Millisecond}}
	m := NewMiddleware(nil, nil, limiter)

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	m.RateLimit(noContent)(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want %q", got, "2")
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "ip:192.0.2.7" {
		t.Errorf("limiter keys = %v", limiter.keys)
	}
}

func TestRateLimitAllows(t *testing.T) {
	m := NewMiddleware(nil, nil, &stubLimiter{decision: security.RateDecision{Allowed: true, Remaining: 4}})

	rec := httptest.NewRecorder()
	m.RateLimit(noContent)(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "4")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	captureLogs(t)
	m := NewMiddleware(nil, nil, &stubLimiter{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	m.RateLimit(noContent)(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
