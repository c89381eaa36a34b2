package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/ibheros/studio/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestAdminRepositoryLookupAndTouch(t *testing.T) {
	dsn := fmt.Sprintf("file:admin_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	repo := NewAdminRepository(db)
	admin := &models.Admin{Username: "editor", PasswordHash: "hash", TokenVersion: 3}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	got, err := repo.GetByUsername(" editor ")
	if err != nil || got == nil || got.ID != admin.ID {
		t.Fatalf("lookup by username failed: got=%+v err=%v", got, err)
	}
	if missing, err := repo.GetByUsername("nobody"); err != nil || missing != nil {
		t.Fatalf("missing admin should be nil, nil: got=%+v err=%v", missing, err)
	}
	if missing, err := repo.GetByID(0); err != nil || missing != nil {
		t.Fatalf("zero id should be nil, nil: got=%+v err=%v", missing, err)
	}

	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	if err := repo.TouchLogin(admin.ID, at); err != nil {
		t.Fatalf("touch login failed: %v", err)
	}
	got, err = repo.GetByID(admin.ID)
	if err != nil || got == nil {
		t.Fatalf("lookup by id failed: %v", err)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Fatalf("unexpected last login: %v", got.LastLoginAt)
	}
	if got.TokenVersion != 3 {
		t.Fatalf("touch must not change token version, got %d", got.TokenVersion)
	}
}
