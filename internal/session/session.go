// Package session はステートレスな署名付きセッションクレデンシャルを提供する。
// セッションはサーバー側に保存せず、署名と有効期限のみで有効性を判定する。
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL はセッションクレデンシャルの有効期間。7日固定。
const TTL = 7 * 24 * time.Hour

// CookieName はセッションクレデンシャルを保持するCookieの名前。
const CookieName = "session"

// Manager はセッションクレデンシャルの発行と検証を行う。
type Manager struct {
	secret []byte
}

// NewManager はManagerを生成する。
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Issue はsubject識別子を埋め込んだ署名付きトークンを発行する。
// 副作用は持たない。Cookieへの設定は呼び出し元の責務。
func (m *Manager) Issue(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("uid is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate は署名と有効期限を検証し、subject識別子を返す。
// 形式不正・期限切れ・署名不一致はすべてエラーとして扱い、
// 失敗種別はログにのみ記録する（呼び出し元は一律に未認証として処理する）。
func (m *Manager) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty session token")
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		slog.Warn("session validation failed", slog.String("reason", failureKind(err)))
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		slog.Warn("session validation failed", slog.String("reason", "invalid"))
		return "", errors.New("invalid session token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		slog.Warn("session validation failed", slog.String("reason", "missing_subject"))
		return "", errors.New("missing subject in session token")
	}

	return claims.Subject, nil
}

// failureKind は検証失敗の種別をログ用に分類する。
func failureKind(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature_mismatch"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "other"
	}
}
