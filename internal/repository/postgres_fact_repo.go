package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinefact/internal/model"
)

// PostgresFactRepo はPostgreSQLを使用したファクトリポジトリ。
type PostgresFactRepo struct {
	db *sql.DB
}

// NewPostgresFactRepo はPostgresFactRepoを生成する。
func NewPostgresFactRepo(db *sql.DB) *PostgresFactRepo {
	return &PostgresFactRepo{db: db}
}

// FindLatestByUserID はユーザーの最新ファクトを取得する。見つからない場合はnilを返す。
func (r *PostgresFactRepo) FindLatestByUserID(ctx context.Context, userID string) (*model.Fact, error) {
	fact := &model.Fact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, created_at
		 FROM facts WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&fact.ID, &fact.UserID, &fact.Text, &fact.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest fact: %w", err)
	}

	return fact, nil
}

// Create はファクトを履歴に追記する。既存行の更新は行わない。
func (r *PostgresFactRepo) Create(ctx context.Context, fact *model.Fact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO facts (id, user_id, text, created_at)
		 VALUES ($1, $2, $3, $4)`,
		fact.ID, fact.UserID, fact.Text, fact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}

	return nil
}

// compile-time interface check
var _ FactRepository = (*PostgresFactRepo)(nil)
