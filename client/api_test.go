package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// 統一フォーマットのエラーボディが解釈されることを検証
func TestNormalizeAPIError_WireFormat(t *testing.T) {
	apiErr := NormalizeAPIError(400, []byte(`{"code":"VALIDATION_ERROR","message":"Favorite movie must be between 2 and 100 characters"}`))

	if apiErr.Status != 400 {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Message != "Favorite movie must be between 2 and 100 characters" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

// 解釈不能なボディはUNKNOWN_ERRORに縮退することを検証
func TestNormalizeAPIError_FallsBackToUnknown(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"JSONでないボディ", []byte("<html>502 Bad Gateway</html>")},
		{"codeなしのJSON", []byte(`{"error":"something"}`)},
		{"空ボディ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NormalizeAPIError(502, tt.body)
			if apiErr.Code != ErrCodeUnknown {
				t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeUnknown)
			}
			if apiErr.Message != "Unexpected API error" {
				t.Errorf("message = %q", apiErr.Message)
			}
			if apiErr.Status != 502 {
				t.Errorf("status = %d", apiErr.Status)
			}
		})
	}
}

// messageが欠けている場合は汎用メッセージで補完されることを検証
func TestNormalizeAPIError_MissingMessage(t *testing.T) {
	apiErr := NormalizeAPIError(500, []byte(`{"code":"FACT_ERROR"}`))
	if apiErr.Code != "FACT_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Message != "Unexpected API error" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

// ログインでセッションCookieが保持され、後続リクエストに付与されることを検証
func TestClient_LoginPersistsSessionCookie(t *testing.T) {
	var sawCookie bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/google":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "signed-token", Path: "/"})
			w.Write([]byte(`{"success":true,"firstTime":true}`))
		case "/me":
			if c, err := r.Cookie("session"); err == nil && c.Value == "signed-token" {
				sawCookie = true
			}
			w.Write([]byte(`{"uid":"google-uid-123","email":"test@example.com","name":"Test","image":"","favoriteMovie":null}`))
		}
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	firstTime, err := c.LoginWithGoogle(context.Background(), "valid-id-token")
	if err != nil {
		t.Fatalf("LoginWithGoogle() error = %v", err)
	}
	if !firstTime {
		t.Error("expected firstTime = true")
	}

	p, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if !sawCookie {
		t.Error("session cookie was not sent on subsequent request")
	}
	if p.UID != "google-uid-123" {
		t.Errorf("uid = %q", p.UID)
	}
	if p.FavoriteMovie != nil {
		t.Errorf("favoriteMovie = %v, want nil", p.FavoriteMovie)
	}
}

// エラーレスポンスがAPIErrorとして返ることを検証
func TestClient_ErrorResponse_ReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHENTICATED","message":"Unauthorized"}`))
	}))
	defer server.Close()

	c := NewClientWithHTTPClient(server.URL, server.Client())

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "UNAUTHENTICATED" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.Status)
	}
}

// forceNew指定がクエリパラメータに反映されることを検証
func TestClient_GetFact_ForceNewQuery(t *testing.T) {
	var gotForceNew string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotForceNew = r.URL.Query().Get("forceNew")
		w.Write([]byte(`{"fact":"a fact","createdAt":"2026-08-01T12:00:00Z","source":"generated"}`))
	}))
	defer server.Close()

	c := NewClientWithHTTPClient(server.URL, server.Client())

	f, err := c.GetFact(context.Background(), true)
	if err != nil {
		t.Fatalf("GetFact() error = %v", err)
	}
	if gotForceNew != "true" {
		t.Errorf("forceNew query = %q, want true", gotForceNew)
	}
	if f.Source != "generated" {
		t.Errorf("source = %q", f.Source)
	}
}

// UpdateMovieが正規化後のタイトルを返すことを検証
func TestClient_UpdateMovie_ReturnsCanonicalTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"favoriteMovie":"Inception"}`))
	}))
	defer server.Close()

	c := NewClientWithHTTPClient(server.URL, server.Client())

	got, err := c.UpdateMovie(context.Background(), "  Inception  ")
	if err != nil {
		t.Fatalf("UpdateMovie() error = %v", err)
	}
	if got != "Inception" {
		t.Errorf("movie = %q", got)
	}
}
