// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cinefact/internal/metrics"
	"github.com/hitoshi/cinefact/internal/middleware"
	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	HandleGoogleLogin(ctx context.Context, idToken string) (*model.User, bool, error)
}

// SessionIssuer はセッショントークンの発行インターフェース。
// session.Managerの部分集合として定義する。
type SessionIssuer interface {
	Issue(uid string) (string, error)
}

// ProfileReader はセッション確認に必要なユーザー参照インターフェース。
// user.Serviceの部分集合として定義する。
type ProfileReader interface {
	GetByUID(ctx context.Context, uid string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	issuer    SessionIssuer
	users     ProfileReader
	collector metrics.MetricsCollector
	config    AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, issuer SessionIssuer, users ProfileReader, collector metrics.MetricsCollector, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:   service,
		issuer:    issuer,
		users:     users,
		collector: collector,
		config:    config,
	}
}

// googleLoginRequest はGoogleログインのリクエストボディ。
type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleLogin はGoogleのIDトークンを検証し、セッションCookieを発行する。
// POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewBadRequestError("Invalid request body"))
		return
	}
	if req.IDToken == "" {
		middleware.WriteError(w, model.NewBadRequestError("idToken is required"))
		return
	}

	u, firstTime, err := h.service.HandleGoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	token, err := h.issuer.Issue(u.UID)
	if err != nil {
		slog.Error("failed to issue session token", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.setSessionCookie(w, token)
	h.collector.RecordLogin(firstTime)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":   true,
		"firstTime": firstTime,
	})
}

// Logout はセッションCookieを破棄する。
// セッションはステートレスなためサーバー側の状態変更はない。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
	})
}

// Check は現在のセッションのユーザーを返す。
// セッションミドルウェアを通過した時点で有効であることが保証されている。
// GET /auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthenticatedError())
		return
	}

	u, err := h.users.GetByUID(r.Context(), uid)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"uid":   u.UID,
		"email": u.Email,
	})
}

// setSessionCookie はHTTP OnlyのセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
