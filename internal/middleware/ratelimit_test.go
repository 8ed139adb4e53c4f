package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pudaweed/clubman/internal/model"
	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:       rate.Limit(1.0), // 補充を事実上止めてバーストのみで検証
		GeneralBurst:      3,
		PaymentWriteRate:  rate.Limit(1.0),
		PaymentWriteBurst: 2,
		CleanupInterval:   time.Hour,
	}
}

func rateLimitedRequest(t *testing.T, handler http.Handler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = req.WithContext(ContextWithUser(req.Context(), &model.User{ID: userID, Role: model.RolePlayer}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_GeneralBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if rec := rateLimitedRequest(t, handler, "u1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := rateLimitedRequest(t, handler, "u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rateLimitedRequest(t, handler, "u1")
	}
	if rec := rateLimitedRequest(t, handler, "u1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected u1 to be limited, got %d", rec.Code)
	}

	// 別ユーザーには影響しない
	if rec := rateLimitedRequest(t, handler, "u2"); rec.Code != http.StatusOK {
		t.Errorf("expected u2 to pass, got %d", rec.Code)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("expected 2 limiter entries, got %d", rl.GeneralLimiterCount())
	}
}

func TestRateLimiter_PaymentWriteIsIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	paymentWrite := rl.PaymentWriteMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 支払い書き込みのバーストを使い切る
	for i := 0; i < 2; i++ {
		if rec := rateLimitedRequest(t, paymentWrite, "u1"); rec.Code != http.StatusOK {
			t.Fatalf("payment write %d: expected 200, got %d", i, rec.Code)
		}
	}
	if rec := rateLimitedRequest(t, paymentWrite, "u1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected payment write to be limited, got %d", rec.Code)
	}

	// API全般のリミッターは消費されない
	if rec := rateLimitedRequest(t, general, "u1"); rec.Code != http.StatusOK {
		t.Errorf("expected general request to pass, got %d", rec.Code)
	}
}

func TestRateLimiter_NoUserInContext(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()
	if config.GeneralBurst != 120 {
		t.Errorf("expected general burst 120, got %d", config.GeneralBurst)
	}
	if config.PaymentWriteBurst != 20 {
		t.Errorf("expected payment write burst 20, got %d", config.PaymentWriteBurst)
	}
}
