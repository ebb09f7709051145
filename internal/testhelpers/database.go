package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/whatscooking/backend/internal/model"
)

// SetupTestDatabase opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection so the in-memory database is shared
// across all queries in the test.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Recipe{},
		&model.RecipeGeneration{},
		&model.SavedRecipe{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
