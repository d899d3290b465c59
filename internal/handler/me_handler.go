package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cinefact/internal/middleware"
	"github.com/hitoshi/cinefact/internal/model"
)

// maxAvatarBytes はアバタープロキシが転送する最大バイト数。
const maxAvatarBytes = 5 << 20 // 5MB

// UserServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	UpdateFavoriteMovie(ctx context.Context, uid, rawTitle string) (string, error)
}

// MeHandler はログインユーザー自身のプロフィールに関するHTTPハンドラー。
type MeHandler struct {
	userService  UserServiceInterface
	avatarClient *http.Client // SSRF防止機能付きクライアント
}

// NewMeHandler はMeHandlerを生成する。
func NewMeHandler(userService UserServiceInterface, avatarClient *http.Client) *MeHandler {
	return &MeHandler{
		userService:  userService,
		avatarClient: avatarClient,
	}
}

// profileResponse はプロフィールのレスポンスボディ。
// favoriteMovieは未設定の場合nullになる。
type profileResponse struct {
	UID           string  `json:"uid"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	FavoriteMovie *string `json:"favoriteMovie"`
}

// GetMe は現在のログインユーザーのプロフィールを返す。
// GET /me
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthenticatedError())
		return
	}

	u, err := h.userService.GetByUID(r.Context(), uid)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := profileResponse{
		UID:   u.UID,
		Email: u.Email,
		Name:  u.Name,
		Image: u.AvatarURL,
	}
	if u.HasFavoriteMovie() {
		movie := u.FavoriteMovie
		resp.FavoriteMovie = &movie
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// updateMovieRequest はお気に入り映画更新のリクエストボディ。
type updateMovieRequest struct {
	FavoriteMovie string `json:"favoriteMovie"`
}

// UpdateMovie はお気に入り映画を更新し、正規化後のタイトルを返す。
// PUT /me/movie
func (h *MeHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthenticatedError())
		return
	}

	var req updateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewBadRequestError("Invalid request body"))
		return
	}

	canonical, err := h.userService.UpdateFavoriteMovie(r.Context(), uid, req.FavoriteMovie)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"favoriteMovie": canonical,
	})
}

// GetAvatar はユーザーのアバター画像をプロキシ配信する。
// 外部のアバターURLをクライアントに直接公開せず、
// SSRF防止機能付きクライアントで取得して転送する。
// GET /me/avatar
func (h *MeHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthenticatedError())
		return
	}

	u, err := h.userService.GetByUID(r.Context(), uid)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if u.AvatarURL == "" {
		http.Error(w, "no avatar", http.StatusNotFound)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u.AvatarURL, nil)
	if err != nil {
		slog.Warn("invalid avatar URL", slog.String("uid", uid), slog.String("error", err.Error()))
		http.Error(w, "no avatar", http.StatusNotFound)
		return
	}

	resp, err := h.avatarClient.Do(req)
	if err != nil {
		slog.Warn("failed to fetch avatar",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		http.Error(w, "failed to fetch avatar", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, "failed to fetch avatar", http.StatusBadGateway)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")

	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxAvatarBytes)); err != nil {
		slog.Warn("failed to stream avatar", slog.String("error", err.Error()))
	}
}
