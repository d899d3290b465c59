// Package user はユーザープロフィールに関するビジネスロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/repository"
)

// お気に入り映画タイトルの長さ制限（トリム後の文字数）
const (
	movieTitleMinLen = 2
	movieTitleMaxLen = 100
)

// Service はユーザープロフィールの参照と更新を提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetByUID はsubject識別子でユーザーを取得する。
// 見つからない場合は未認証として扱う（セッションは有効だがレコードが消えているケース）。
func (s *Service) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, model.NewUnauthenticatedError()
	}
	return u, nil
}

// UpdateFavoriteMovie はお気に入り映画を検証して更新し、正規化後のタイトルを返す。
// 前後の空白はトリムされ、トリム後の文字数が2〜100の範囲外なら
// 書き込みを行わずVALIDATION_ERRORを返す。
func (s *Service) UpdateFavoriteMovie(ctx context.Context, uid, rawTitle string) (string, error) {
	title := strings.TrimSpace(rawTitle)

	if n := utf8.RuneCountInString(title); n < movieTitleMinLen || n > movieTitleMaxLen {
		return "", model.NewMovieValidationError()
	}

	if err := s.userRepo.UpdateFavoriteMovie(ctx, uid, title); err != nil {
		return "", fmt.Errorf("failed to update favorite movie: %w", err)
	}

	slog.Info("favorite movie updated", slog.String("uid", uid))
	return title, nil
}
