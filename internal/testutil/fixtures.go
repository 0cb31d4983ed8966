package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"budgetly/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithName(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithName creates a user with the given username and email.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, UserID: &userID}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a calendar-2024 budget with a monthly income of 5000.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, isActive bool) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:        userID,
		Name:          fmt.Sprintf("Budget %d", nextID()),
		MonthlyIncome: 5000,
		StartDate:     Date(2024, time.January, 1),
		EndDate:       Date(2024, time.December, 31),
		IsActive:      isActive,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestAllocation allocates amount of a budget to a category.
func CreateTestAllocation(t *testing.T, db *gorm.DB, budgetID uint, category string, amount float64) *models.BudgetCategory {
	t.Helper()

	allocation := &models.BudgetCategory{BudgetID: budgetID, CategoryName: category, AllocatedAmount: amount}
	if err := db.Create(allocation).Error; err != nil {
		t.Fatalf("failed to create test allocation: %v", err)
	}
	return allocation
}

// CreateTestExpense records an expense dated 2024-03-15.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, category string, amount float64, budgetID *uint) *models.Expense {
	t.Helper()
	return CreateTestExpenseOn(t, db, userID, Date(2024, time.March, 15), category, amount, budgetID)
}

// CreateTestExpenseOn records an expense on the given date.
func CreateTestExpenseOn(t *testing.T, db *gorm.DB, userID uint, date time.Time, category string, amount float64, budgetID *uint) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Date:        date,
		Category:    category,
		Amount:      amount,
		Description: fmt.Sprintf("expense %d", nextID()),
		BudgetID:    budgetID,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// UintPtr returns a pointer to v.
func UintPtr(v uint) *uint { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
