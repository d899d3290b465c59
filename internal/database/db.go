package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open はdatabaseURL（postgres://...形式）で指定されたPostgreSQLへの接続を開く。
// この時点では接続は確立されないため、疎通はPing()で確認すること。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
