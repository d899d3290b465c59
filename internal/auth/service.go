// Package auth はIDトークン検証とログイン時のユーザーアップサートを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/repository"
)

// URLValidator はアバターURLの安全性検証インターフェース。
// security.SSRFGuardServiceの部分集合として定義する。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier    TokenVerifier
	userRepo    repository.UserRepository
	avatarGuard URLValidator
}

// NewService はServiceを生成する。
func NewService(verifier TokenVerifier, userRepo repository.UserRepository, avatarGuard URLValidator) *Service {
	return &Service{
		verifier:    verifier,
		userRepo:    userRepo,
		avatarGuard: avatarGuard,
	}
}

// HandleGoogleLogin はIDトークンを検証し、ユーザーをアップサートする。
// 戻り値のfirstTimeは「usersレコードが存在しなかった」ことを意味し、
// クライアント側のオンボーディング遷移の判断に使われる。
// 既存ユーザーの場合はレコードを一切変更しない（name/avatarの再同期は行わない）。
func (s *Service) HandleGoogleLogin(ctx context.Context, idToken string) (*model.User, bool, error) {
	// 1. IDトークンの検証
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("ID token verification failed", slog.String("error", err.Error()))
		return nil, false, model.NewUnauthenticatedError()
	}

	// emailは必須クレーム
	if claims.Email == "" {
		return nil, false, model.NewBadRequestError("Google account email is required")
	}

	// 2. subject識別子で既存ユーザーを検索
	existing, err := s.userRepo.FindByUID(ctx, claims.Sub)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	if existing != nil {
		// 既存ユーザー: 無変更で返す
		slog.Info("existing user logged in", slog.String("uid", existing.UID))
		return existing, false, nil
	}

	// 3. 新規ユーザー: お気に入り映画未設定で作成
	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		UID:       claims.Sub,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: s.safeAvatarURL(claims.AvatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("uid", newUser.UID),
		slog.String("email", newUser.Email),
	)

	return newUser, true, nil
}

// safeAvatarURL は検証を通過したアバターURLのみを返す。
// 検証に失敗した場合はログインを妨げず、空文字列（アバターなし）として扱う。
func (s *Service) safeAvatarURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if err := s.avatarGuard.ValidateURL(rawURL); err != nil {
		slog.Warn("avatar URL rejected", slog.String("error", err.Error()))
		return ""
	}
	return rawURL
}
