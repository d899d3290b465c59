package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/cinefact/internal/middleware"
	"github.com/hitoshi/cinefact/internal/model"
)

// FactServiceInterface は豆知識ハンドラーが必要とするサービスインターフェース。
type FactServiceInterface interface {
	GetFact(ctx context.Context, user *model.User, forceNew bool) (*model.Fact, model.FactSource, error)
}

// FactHandler は映画豆知識のHTTPハンドラー。
type FactHandler struct {
	userService UserServiceInterface
	factService FactServiceInterface
}

// NewFactHandler はFactHandlerを生成する。
func NewFactHandler(userService UserServiceInterface, factService FactServiceInterface) *FactHandler {
	return &FactHandler{
		userService: userService,
		factService: factService,
	}
}

// IsForceNew はリクエストが強制再生成を要求しているかを判定する。
// ルーティング層のレート制限判定と共有する。
func IsForceNew(r *http.Request) bool {
	return r.URL.Query().Get("forceNew") == "true"
}

// factResponse は豆知識のレスポンスボディ。
type factResponse struct {
	Fact      string `json:"fact"`
	CreatedAt string `json:"createdAt"`
	Source    string `json:"source"`
}

// GetFact はお気に入り映画の豆知識を返す。
// forceNew=true指定時はキャッシュを使わず新規生成する。
// GET /fact?forceNew=true
func (h *FactHandler) GetFact(w http.ResponseWriter, r *http.Request) {
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

	f, source, err := h.factService.GetFact(r.Context(), u, IsForceNew(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(factResponse{
		Fact:      f.Text,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
		Source:    string(source),
	})
}
