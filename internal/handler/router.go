package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinefact/internal/metrics"
	"github.com/hitoshi/cinefact/internal/middleware"
)

// Pinger はヘルスチェックが必要とするDB疎通確認インターフェース。
// sql.DBの部分集合として定義する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionValidator  middleware.TokenValidator
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// ヘルスチェック
	DB Pinger

	// 認証
	AuthService   AuthServiceInterface
	SessionIssuer SessionIssuer
	AuthConfig    AuthHandlerConfig
	Collector     metrics.MetricsCollector

	// プロフィール
	UserService  UserServiceInterface
	AvatarClient *http.Client

	// 豆知識
	FactService FactServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → RateLimit(General)
//
// 認証ルート（/auth/google, /auth/logout）とヘルスチェックはセッション検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionIssuer, deps.UserService, deps.Collector, deps.AuthConfig)
	meHandler := NewMeHandler(deps.UserService, deps.AvatarClient)
	factHandler := NewFactHandler(deps.UserService, deps.FactService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthCheck(deps.DB))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", authHandler.GoogleLogin)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionValidator, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/check", authHandler.Check)

		// プロフィール
		r.Route("/me", func(r chi.Router) {
			r.Get("/", meHandler.GetMe)
			r.Put("/movie", meHandler.UpdateMovie)
			r.Get("/avatar", meHandler.GetAvatar)
		})

		// 豆知識（強制再生成のみ追加のレート制限を適用）
		r.With(deps.RateLimiter.FactGenerationMiddleware(IsForceNew)).Get("/fact", factHandler.GetFact)
	})

	return r
}

// newHealthCheck は稼働確認用のハンドラーを返す。
// DBへの疎通が取れない場合は503を返す。
// GET /health
func newHealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
