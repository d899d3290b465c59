// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/cinefact/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUID はIdPのsubject識別子でユーザーを取得する。見つからない場合はnilを返す。
	FindByUID(ctx context.Context, uid string) (*model.User, error)

	// Create は新規ユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateFavoriteMovie は指定UIDユーザーのお気に入り映画を上書きする。
	// 呼び出し元でtrimと長さ検証（2〜100文字）を済ませていること。
	UpdateFavoriteMovie(ctx context.Context, uid, movie string) error
}

// FactRepository はファクトデータの永続化インターフェース。
// ファクトは追記専用で、更新・削除は提供しない。
type FactRepository interface {
	// FindLatestByUserID はユーザーの最新ファクトを取得する。見つからない場合はnilを返す。
	FindLatestByUserID(ctx context.Context, userID string) (*model.Fact, error)

	// Create はファクトを履歴に追記する。
	Create(ctx context.Context, fact *model.Fact) error
}
