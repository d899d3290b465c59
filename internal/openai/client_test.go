package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// 正常なレスポンスから本文が抽出されることを検証
func TestGenerate_ReturnsContent(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  A fun fact.  "}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), testLogger(), "test-key", "gpt-4o-mini", server.URL)

	got, err := c.Generate(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got != "A fun fact." {
		t.Errorf("content = %q, want trimmed %q", got, "A fun fact.")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "system prompt" {
		t.Errorf("system message = %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "user prompt" {
		t.Errorf("user message = %+v", gotBody.Messages[1])
	}
}

// エラーステータスは失敗として扱われることを検証
func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.Client(), testLogger(), "test-key", "gpt-4o-mini", server.URL)

	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

// 選択肢が空のレスポンスはエラーになることを検証
func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), testLogger(), "test-key", "gpt-4o-mini", server.URL)

	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

// 空白のみの本文はエラーになることを検証
func TestGenerate_BlankContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), testLogger(), "test-key", "gpt-4o-mini", server.URL)

	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for blank content")
	}
}

// 不正なJSONレスポンスはエラーになることを検証
func TestGenerate_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), testLogger(), "test-key", "gpt-4o-mini", server.URL)

	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

// ベースURL未指定時に本番エンドポイントが使われることを検証
func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(http.DefaultClient, testLogger(), "k", "m", "")
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, defaultBaseURL)
	}
}
