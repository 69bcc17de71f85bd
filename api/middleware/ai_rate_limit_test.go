package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
)

type stubLimiter struct {
	counts map[string]int64
	limits map[string]int64
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func TestAIRateLimitBlocksPublisherOverLimit(t *testing.T) {
	cfg := config.AIRateLimitConfig{Window: time.Minute, PublisherLimit: 2, IPLimit: 100}
	limiter := &stubLimiter{}
	handler := AIRateLimit(cfg, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	identity := tenant.Demo(uuid.New())
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(tenant.WithIdentity(req.Context(), identity))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		want := http.StatusOK
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if resp.Code != want {
			t.Fatalf("request %d: expected %d got %d", i, want, resp.Code)
		}
	}
}

func TestAIRateLimitBlocksIPOverLimit(t *testing.T) {
	cfg := config.AIRateLimitConfig{Window: time.Minute, PublisherLimit: 100, IPLimit: 1}
	limiter := &stubLimiter{}
	handler := AIRateLimit(cfg, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	identity := tenant.Demo(uuid.New())
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		req = req.WithContext(tenant.WithIdentity(req.Context(), identity))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if resp.Code != want {
			t.Fatalf("request %d: expected %d got %d", i, want, resp.Code)
		}
	}

	for scope := range limiter.counts {
		if strings.HasPrefix(scope, "ai:ip:") && !strings.HasSuffix(scope, "203.0.113.9") {
			t.Fatalf("unexpected ip scope %s", scope)
		}
	}
}

func TestAIRateLimitDisabledWithoutLimiter(t *testing.T) {
	cfg := config.AIRateLimitConfig{Window: time.Minute, PublisherLimit: 1, IPLimit: 1}
	handler := AIRateLimit(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass-through without limiter, got %d", resp.Code)
	}
}
