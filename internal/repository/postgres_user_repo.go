package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/cinefact/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByUID はIdPのsubject識別子でユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	user := &model.User{}
	var favoriteMovie sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, uid, email, name, avatar_url, favorite_movie, created_at, updated_at
		 FROM users WHERE uid = $1`,
		uid,
	).Scan(&user.ID, &user.UID, &user.Email, &user.Name, &user.AvatarURL, &favoriteMovie, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by UID: %w", err)
	}

	if favoriteMovie.Valid {
		user.FavoriteMovie = favoriteMovie.String
	}

	return user, nil
}

// Create は新規ユーザーを作成する。
// お気に入り映画は常に未設定（NULL）で作成される。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, uid, email, name, avatar_url, favorite_movie, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)`,
		user.ID, user.UID, user.Email, user.Name, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// UpdateFavoriteMovie は指定UIDユーザーのお気に入り映画を上書きする。
// 同一ユーザーに対する並行更新はlast-writer-winsとなる（楽観ロックは持たない）。
func (r *PostgresUserRepo) UpdateFavoriteMovie(ctx context.Context, uid, movie string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET favorite_movie = $1, updated_at = $2 WHERE uid = $3`,
		movie, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("failed to update favorite movie: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", uid)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
