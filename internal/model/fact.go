package model

import "time"

// FactSource はファクトの取得元を表す。
type FactSource string

const (
	// FactSourceCache はキャッシュ済みファクトを返したことを示す。
	FactSourceCache FactSource = "cache"
	// FactSourceGenerated は外部コラボレーターで新規生成したことを示す。
	FactSourceGenerated FactSource = "generated"
)

// Fact はユーザーのお気に入り映画に関する豆知識を表す。
// 作成後は不変。ユーザーごとに履歴として蓄積され、削除されない。
type Fact struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}
