package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/session"
)

type mockValidator struct {
	validateFn func(tokenString string) (string, error)
}

func (m *mockValidator) Validate(tokenString string) (string, error) {
	if m.validateFn != nil {
		return m.validateFn(tokenString)
	}
	return "", errors.New("not configured")
}

type mockUserFinder struct {
	findByUIDFn func(ctx context.Context, uid string) (*model.User, error)
}

func (m *mockUserFinder) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if m.findByUIDFn != nil {
		return m.findByUIDFn(ctx, uid)
	}
	return nil, nil
}

var _ TokenValidator = (*mockValidator)(nil)
var _ UserFinder = (*mockUserFinder)(nil)

func okValidator(uid string) *mockValidator {
	return &mockValidator{
		validateFn: func(tokenString string) (string, error) {
			return uid, nil
		},
	}
}

func okUserFinder() *mockUserFinder {
	return &mockUserFinder{
		findByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid}, nil
		},
	}
}

// assertUnauthenticated は401と統一エラーボディを検証する。
func assertUnauthenticated(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeUnauthenticated {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthenticated)
	}
	if body.Message != "Unauthorized" {
		t.Errorf("message = %q, want %q", body.Message, "Unauthorized")
	}
}

// Cookieなしのリクエストは401になることを検証
func TestSessionMiddleware_NoCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(okValidator("uid-1"), okUserFinder())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assertUnauthenticated(t, w)
}

// トークン検証失敗は401になることを検証
func TestSessionMiddleware_InvalidToken_Returns401(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(tokenString string) (string, error) {
			return "", errors.New("expired")
		},
	}
	mw := NewSessionMiddleware(validator, okUserFinder())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "bad-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assertUnauthenticated(t, w)
}

// トークンは有効だがユーザーレコードが存在しない場合も401になることを検証
func TestSessionMiddleware_UserNotFound_Returns401(t *testing.T) {
	finder := &mockUserFinder{
		findByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(okValidator("uid-1"), finder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assertUnauthenticated(t, w)
}

// ユーザー検索エラーも401になることを検証
func TestSessionMiddleware_FinderError_Returns401(t *testing.T) {
	finder := &mockUserFinder{
		findByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	mw := NewSessionMiddleware(okValidator("uid-1"), finder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assertUnauthenticated(t, w)
}

// 有効なセッションではsubject識別子がコンテキストに注入されることを検証
func TestSessionMiddleware_ValidSession_InjectsUID(t *testing.T) {
	mw := NewSessionMiddleware(okValidator("google-uid-123"), okUserFinder())

	var gotUID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := UIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UIDFromContext() error = %v", err)
		}
		gotUID = uid
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUID != "google-uid-123" {
		t.Errorf("uid = %q, want %q", gotUID, "google-uid-123")
	}
}

// コンテキストにsubject識別子がない場合のエラーを検証
func TestUIDFromContext_Missing_ReturnsError(t *testing.T) {
	if _, err := UIDFromContext(context.Background()); err == nil {
		t.Fatal("expected error for missing uid")
	}
}

// ContextWithUIDで注入した値が取得できることを検証
func TestContextWithUID_RoundTrip(t *testing.T) {
	ctx := ContextWithUID(context.Background(), "uid-1")

	uid, err := UIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UIDFromContext() error = %v", err)
	}
	if uid != "uid-1" {
		t.Errorf("uid = %q, want %q", uid, "uid-1")
	}
}
