package services

import (
	"context"

	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AttemptLogin(identifier, password string) (*models.User, error)
}

// CategoryServicer defines the contract for the category catalog.
type CategoryServicer interface {
	GetUserCategories(userID uint) ([]models.Category, error)
	CreateCategory(userID uint, name string) (*models.Category, error)
}

// CategorySpend is the actual spend recorded against one category.
type CategorySpend struct {
	Category string  `json:"category"`
	Spent    float64 `json:"spent"`
}

// BudgetDetail is a budget together with its allocations and the spend
// recorded against it.
type BudgetDetail struct {
	models.Budget
	Categories []models.BudgetCategory `json:"categories"`
	Expenses   []CategorySpend         `json:"expenses"`
}

// BudgetServicer defines the contract for the budget lifecycle.
type BudgetServicer interface {
	CreateBudget(userID uint, input BudgetInput) (*models.Budget, error)
	ReplaceBudget(userID, budgetID uint, input BudgetInput) error
	SetBudgetActive(userID, budgetID uint, isActive bool) error
	GetBudgetDetail(userID, budgetID uint) (*BudgetDetail, error)
	GetUserBudgets(userID uint) ([]models.Budget, error)
	GetActiveBudget(userID uint) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
}

// ExpenseServicer defines the contract for expense recording.
type ExpenseServicer interface {
	CreateExpense(userID uint, input ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID uint) ([]models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
	ExportExpenses(userID uint) ([]byte, error)
}

// CategoryTotal aggregates a user's expenses in one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
}

// MonthTotal aggregates a user's expenses in one calendar month (YYYY-MM).
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// Reconciliation compares one allocation of the active budget with the
// spend recorded against it. RemainingAmount is negative when overspent.
type Reconciliation struct {
	CategoryName    string  `json:"category_name"`
	AllocatedAmount float64 `json:"allocated_amount"`
	SpentAmount     float64 `json:"spent_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// Analytics is the dashboard view of a user's spending.
type Analytics struct {
	CategoryData   []CategoryTotal  `json:"categoryData"`
	TimeData       []MonthTotal     `json:"timeData"`
	RecentExpenses []models.Expense `json:"recentExpenses"`
	BudgetAnalysis []Reconciliation `json:"budgetAnalysis"`
}

// Alert levels for allocations of the active budget.
const (
	AlertWarning  = "warning"
	AlertCritical = "critical"
)

// BudgetAlert flags an allocation whose spend crossed a threshold.
type BudgetAlert struct {
	Reconciliation
	PercentageUsed float64 `json:"percentage_used"`
	Level          string  `json:"level"`
}

// AnalyticsServicer defines the contract for read-side aggregates.
type AnalyticsServicer interface {
	GetAnalytics(ctx context.Context, userID uint) (*Analytics, error)
	GetBudgetAlerts(ctx context.Context, userID uint) ([]BudgetAlert, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	GetUserAuditLogs(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
