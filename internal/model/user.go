// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// UIDは外部IdP（Google）が発行する不変のsubject識別子。
// NameとAvatarURLは初回ログイン時のスナップショットで、以降のログインでは更新しない。
type User struct {
	ID            string
	UID           string
	Email         string
	Name          string
	AvatarURL     string
	FavoriteMovie string // 未設定の場合は空文字列。設定時は必ずtrim後2〜100文字。
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasFavoriteMovie はお気に入り映画が設定済みかを返す。
func (u *User) HasFavoriteMovie() bool {
	return u.FavoriteMovie != ""
}
