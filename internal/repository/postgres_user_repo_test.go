package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Userモデルのフィールドが正しく構築されることを検証
func TestPostgresUserRepo_UserModel_Fields(t *testing.T) {
	now := time.Now()
	user := &model.User{
		ID:           "user-id-1",
		Email:        "cook@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		CreatedAt:    now,
	}

	if user.Email != "cook@example.com" {
		t.Errorf("user.Email = %q, want %q", user.Email, "cook@example.com")
	}
	if user.PasswordHash == "" {
		t.Error("expected non-empty PasswordHash")
	}
}
