package client

// ApplyOptimisticMovie はお気に入り映画を差し替えた新しいプロフィールを返す。
// 元のプロフィールは変更しない（コピーオンライト）。
func ApplyOptimisticMovie(p *Profile, movie string) *Profile {
	next := *p
	next.FavoriteMovie = &movie
	return &next
}

// RollbackMovie は楽観的更新を取り消し、変更前の値を持つ新しいプロフィールを返す。
// 元のプロフィールは変更しない。
func RollbackMovie(p *Profile, previous *string) *Profile {
	next := *p
	next.FavoriteMovie = previous
	return &next
}
