// Package client はAPIサーバーのGoクライアントを提供する。
// セッションCookieの保持、統一エラーフォーマットの解釈、
// お気に入り映画の楽観的更新コントローラーを含む。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// ErrCodeUnknown はサーバーの応答が統一フォーマットとして解釈できない場合のコード。
const ErrCodeUnknown = "UNKNOWN_ERROR"

// unknownErrorMessage は解釈不能な失敗時の汎用メッセージ。
const unknownErrorMessage = "Unexpected API error"

// APIError はサーバーが返した（または解釈不能だった）エラーを表す。
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
}

// NormalizeAPIError はレスポンスボディを統一エラーフォーマットとして解釈する。
// code/messageが取り出せない場合はUNKNOWN_ERRORと汎用メッセージに縮退する。
func NormalizeAPIError(status int, body []byte) *APIError {
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err != nil || wire.Code == "" {
		return &APIError{
			Status:  status,
			Code:    ErrCodeUnknown,
			Message: unknownErrorMessage,
		}
	}
	if wire.Message == "" {
		wire.Message = unknownErrorMessage
	}
	return &APIError{
		Status:  status,
		Code:    wire.Code,
		Message: wire.Message,
	}
}

// Profile はログインユーザーのプロフィールスナップショット。
type Profile struct {
	UID           string  `json:"uid"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	FavoriteMovie *string `json:"favoriteMovie"`
}

// FactResult は豆知識の取得結果。
type FactResult struct {
	Fact      string `json:"fact"`
	CreatedAt string `json:"createdAt"`
	Source    string `json:"source"`
}

// Client はAPIサーバーのHTTPクライアント。
// Cookieジャーでセッションを保持する。
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient はClientを生成する。
// セッションCookie保持のためCookieジャーを構成する。
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Jar: jar},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// NewClientWithHTTPClient はHTTPクライアントを注入してClientを生成する。
// テスト用。
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// doJSON はJSONリクエストを送信し、2xxならレスポンスをoutにデコードする。
// 2xx以外は正規化したAPIErrorを返す。
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NormalizeAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// LoginWithGoogle はGoogleのIDトークンでログインし、初回ログインかどうかを返す。
// 成功するとセッションCookieがジャーに保持される。
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (bool, error) {
	var resp struct {
		Success   bool `json:"success"`
		FirstTime bool `json:"firstTime"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/google", map[string]string{"idToken": idToken}, &resp)
	if err != nil {
		return false, err
	}
	return resp.FirstTime, nil
}

// Logout はセッションを破棄する。
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me は現在のプロフィールを取得する。
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateMovie はお気に入り映画を更新し、サーバーが正規化したタイトルを返す。
func (c *Client) UpdateMovie(ctx context.Context, movie string) (string, error) {
	var resp struct {
		FavoriteMovie string `json:"favoriteMovie"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/me/movie", map[string]string{"favoriteMovie": movie}, &resp); err != nil {
		return "", err
	}
	return resp.FavoriteMovie, nil
}

// GetFact は豆知識を取得する。forceNew指定時はキャッシュを使わず再生成させる。
func (c *Client) GetFact(ctx context.Context, forceNew bool) (*FactResult, error) {
	path := "/fact"
	if forceNew {
		path += "?forceNew=true"
	}
	var f FactResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
