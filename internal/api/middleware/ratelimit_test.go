package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/portal-acara/server/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoginRateLimit_AllowsInitialBurst(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPerMinute: 5}
	handler := RateLimit(cfg)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPerMinute: 5}
	handler := RateLimit(cfg)(okHandler())

	clientIP := "192.168.1.101:54321"

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = clientIP
		req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = clientIP
	req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
	if retryAfter := res.Header().Get("Retry-After"); retryAfter != "60" {
		t.Errorf("expected Retry-After 60, got %s", retryAfter)
	}
}

func TestRateLimit_PerIPIsolation(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPerMinute: 1}
	handler := RateLimit(cfg)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/login", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	first = first.WithContext(WithRateLimitTier(first.Context(), TierLogin))
	handler.ServeHTTP(httptest.NewRecorder(), first)

	// A different client gets its own allowance.
	second := httptest.NewRequest(http.MethodPost, "/login", nil)
	second.RemoteAddr = "10.0.0.2:1000"
	second = second.WithContext(WithRateLimitTier(second.Context(), TierLogin))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, second)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200 for a fresh client, got %d", res.Code)
	}
}

func TestRateLimit_TiersAreIndependent(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPerMinute: 1, UserPerMinute: 10}
	handler := RateLimit(cfg)(okHandler())

	clientIP := "10.0.0.3:1000"

	login := httptest.NewRequest(http.MethodPost, "/login", nil)
	login.RemoteAddr = clientIP
	login = login.WithContext(WithRateLimitTier(login.Context(), TierLogin))
	handler.ServeHTTP(httptest.NewRecorder(), login)

	// The login tier is exhausted, the user tier for the same IP is not.
	user := httptest.NewRequest(http.MethodGet, "/user", nil)
	user.RemoteAddr = clientIP
	user = user.WithContext(WithRateLimitTier(user.Context(), TierUser))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, user)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200 on the user tier, got %d", res.Code)
	}
}

func TestRateLimit_HealthEndpointsSkipped(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	handler := RateLimit(cfg)(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.4:1000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}
}

func TestRateLimit_ZeroLimitDisablesTier(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 0}
	handler := RateLimit(cfg)(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/acara", nil)
		req.RemoteAddr = "10.0.0.5:1000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}
}
