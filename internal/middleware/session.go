// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// uidContextKey はリクエストコンテキストにsubject識別子を格納するためのキー。
var uidContextKey = contextKey("uid")

// TokenValidator はセッショントークンの検証に必要なインターフェース。
// session.Managerの部分集合として定義する。
type TokenValidator interface {
	Validate(tokenString string) (string, error)
}

// UserFinder はユーザー存在確認に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 署名・有効期限を検証し、対応するユーザーの存在を確認するミドルウェアを返す。
// 認証済みのsubject識別子をリクエストコンテキストに注入する。
// Cookie欠落・検証失敗・ユーザー不在はすべて同一の401レスポンスで扱う。
func NewSessionMiddleware(validator TokenValidator, userFinder UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからセッショントークンを取得
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 2. トークンの署名と有効期限を検証
			uid, err := validator.Validate(cookie.Value)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 3. ユーザーレコードの存在を確認
			u, err := userFinder.FindByUID(r.Context(), uid)
			if err != nil {
				slog.Error("failed to find user for session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}
			if u == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 4. 認証済みsubject識別子をコンテキストに注入
			ctx := context.WithValue(r.Context(), uidContextKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UIDFromContext はリクエストコンテキストからsubject識別子を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UIDFromContext(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(uidContextKey).(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("uid not found in context")
	}
	return uid, nil
}

// ContextWithUID はコンテキストにsubject識別子を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidContextKey, uid)
}
