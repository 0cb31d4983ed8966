// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"budgetly/internal/database"
	"budgetly/internal/models"
)

// AllModels is the list of all GORM models to auto-migrate in tests.
var AllModels = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Budget{},
	&models.BudgetCategory{},
	&models.Expense{},
	&models.AuditLog{},
}

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated and the default categories seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database per test keeps tests apart while letting
	// every pooled connection see the same data.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", nextID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	// SQLite shared cache takes table locks; one connection serializes access.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(AllModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	// AutoMigrate has no partial indexes; mirror the one in the SQL migrations.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_one_active ON budgets (user_id) WHERE is_active").Error; err != nil {
		t.Fatalf("failed to create active budget index: %v", err)
	}
	if err := database.SeedDefaultCategories(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
