package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    2,
		FactGenRate:     rate.Limit(1.0 / 60.0),
		FactGenBurst:    1,
		CleanupInterval: time.Minute,
	}
}

func requestWithUID(uid string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/fact", nil)
	return req.WithContext(ContextWithUID(req.Context(), uid))
}

// バースト超過で429が返ることを検証
func TestGeneralMiddleware_ExceedsBurst_Returns429(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト2まで許可
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithUID("uid-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	// 3リクエスト目は拒否
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUID("uid-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

// ユーザーごとに独立してレート制限されることを検証
func TestGeneralMiddleware_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// uid-1のバーストを使い切る
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestWithUID("uid-1"))
	}

	// uid-2は影響を受けない
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUID("uid-2"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for independent user", w.Code, http.StatusOK)
	}

	if count := rl.GeneralLimiterCount(); count != 2 {
		t.Errorf("limiter count = %d, want 2", count)
	}
}

// 未認証コンテキストでは401が返ることを検証
func TestGeneralMiddleware_MissingUID_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fact", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// shouldLimitがfalseのリクエストは制限されないことを検証
func TestFactGenerationMiddleware_NotLimitedWhenPredicateFalse(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.FactGenerationMiddleware(func(r *http.Request) bool {
		return r.URL.Query().Get("forceNew") == "true"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// forceNewなしは何度でも通過する
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/fact", nil)
		req = req.WithContext(ContextWithUID(req.Context(), "uid-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	if count := rl.FactGenLimiterCount(); count != 0 {
		t.Errorf("limiter count = %d, want 0 for unlimited requests", count)
	}
}

// shouldLimitがtrueのリクエストはバースト超過で429になることを検証
func TestFactGenerationMiddleware_LimitedWhenPredicateTrue(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.FactGenerationMiddleware(func(r *http.Request) bool {
		return true
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト1まで許可
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUID("uid-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// 2リクエスト目は拒否
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUID("uid-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

// クリーンアップで古いエントリが削除されることを検証
func TestCleanup_RemovesStaleEntries(t *testing.T) {
	config := testRateLimiterConfig()
	config.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(config)
	defer rl.Stop()

	rl.getOrCreateGeneralLimiter("uid-1")
	if count := rl.GeneralLimiterCount(); count != 1 {
		t.Fatalf("limiter count = %d, want 1", count)
	}

	// lastAccessを十分過去に戻してクリーンアップを直接実行
	rl.generalMu.Lock()
	rl.generalLimiters["uid-1"].lastAccess = time.Now().Add(-time.Hour)
	rl.generalMu.Unlock()

	rl.cleanup()

	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("limiter count = %d, want 0 after cleanup", count)
	}
}
