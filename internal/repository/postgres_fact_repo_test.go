package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinefact/internal/model"
)

// ファクトが存在しない場合はnilを返すことを検証（要テスト用DB）
func TestPostgresFactRepo_FindLatest_Empty_ReturnsNil(t *testing.T) {
	db := setupRepoTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := newTestUser("google-uid-facts-0")
	if err := NewPostgresUserRepo(db).Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	fact, err := NewPostgresFactRepo(db).FindLatestByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindLatestByUserID() error = %v", err)
	}
	if fact != nil {
		t.Errorf("expected nil for empty history, got %+v", fact)
	}
}

// 複数ファクトのうち最新の1件が返ることを検証（要テスト用DB）
func TestPostgresFactRepo_FindLatest_ReturnsMostRecent(t *testing.T) {
	db := setupRepoTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := newTestUser("google-uid-facts-1")
	if err := NewPostgresUserRepo(db).Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	repo := NewPostgresFactRepo(db)
	base := time.Now().Add(-1 * time.Hour)

	// 古い順に3件追記する
	for i, text := range []string{"oldest", "middle", "newest"} {
		fact := &model.Fact{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, fact); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	latest, err := repo.FindLatestByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindLatestByUserID() error = %v", err)
	}
	if latest == nil {
		t.Fatal("expected a fact")
	}
	if latest.Text != "newest" {
		t.Errorf("latest text = %q, want %q", latest.Text, "newest")
	}
}

// 追記は既存履歴を変更しないことを検証（要テスト用DB）
func TestPostgresFactRepo_Create_AppendsHistory(t *testing.T) {
	db := setupRepoTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := newTestUser("google-uid-facts-2")
	if err := NewPostgresUserRepo(db).Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	repo := NewPostgresFactRepo(db)
	for i := 0; i < 3; i++ {
		fact := &model.Fact{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Text:      "fact",
			CreatedAt: time.Now(),
		}
		if err := repo.Create(ctx, fact); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT count(*) FROM facts WHERE user_id = $1`, user.ID).Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 3 {
		t.Errorf("fact count = %d, want 3", count)
	}
}
