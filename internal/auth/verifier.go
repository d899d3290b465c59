package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// IdentityClaims はIdPの検証済みIDトークンから抽出したユーザー情報を表す。
type IdentityClaims struct {
	Sub       string // IdPが発行する不変のsubject識別子
	Email     string
	Name      string
	AvatarURL string
}

// TokenVerifier はIDトークン検証のインターフェース。
// テストで偽の検証器を注入するための抽象化。
type TokenVerifier interface {
	// Verify はIDトークンを暗号的に検証し、クレームを抽出する。
	Verify(ctx context.Context, rawToken string) (*IdentityClaims, error)
}

// GoogleVerifier はGoogleの公開鍵に対してIDトークンを検証する。
type GoogleVerifier struct {
	audience string

	// テスト用に差し替え可能な検証関数
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier はGoogleVerifierを生成する。
// clientIDはトークンのaudienceとして検証される。
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		audience: clientID,
		validate: idtoken.Validate,
	}
}

// Verify はGoogleのIDトークンを検証し、クレームを抽出する。
// 署名・有効期限・audienceの検証はidtokenライブラリが行う。
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*IdentityClaims, error) {
	payload, err := v.validate(ctx, rawToken, v.audience)
	if err != nil {
		return nil, fmt.Errorf("failed to validate ID token: %w", err)
	}

	if payload.Subject == "" {
		return nil, fmt.Errorf("empty subject in ID token")
	}

	return &IdentityClaims{
		Sub:       payload.Subject,
		Email:     stringClaim(payload, "email"),
		Name:      stringClaim(payload, "name"),
		AvatarURL: stringClaim(payload, "picture"),
	}, nil
}

// stringClaim はペイロードから文字列クレームを取り出す。型が合わない場合は空文字列。
func stringClaim(payload *idtoken.Payload, key string) string {
	v, ok := payload.Claims[key].(string)
	if !ok {
		return ""
	}
	return v
}

// compile-time interface check
var _ TokenVerifier = (*GoogleVerifier)(nil)
