package services

import (
	"strings"
	"time"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
	"budgetly/internal/validator"
)

// AllocationInput is one requested category allocation of a budget.
type AllocationInput struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount" binding:"money,lte=9999999999.99"`
}

// BudgetInput is the request body for creating or replacing a budget.
type BudgetInput struct {
	Name          string            `json:"name" binding:"required"`
	MonthlyIncome *float64          `json:"monthlyIncome" binding:"required,gt=0,money,lte=9999999999.99"`
	StartDate     string            `json:"startDate" binding:"required,date_only"`
	EndDate       string            `json:"endDate" binding:"required,date_only,after_date=StartDate"`
	Categories    []AllocationInput `json:"categories" binding:"dive"`
}

// BudgetRules lists budget validation messages in reporting order.
// Amounts must fit the numeric(12,2) money columns.
var BudgetRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "All fields are required"},
	{Tags: []string{"gt"}, Message: "Monthly income must be greater than 0"},
	{Tags: []string{"money"}, Message: "Amounts can have at most two decimal places"},
	{Tags: []string{"lte"}, Message: "Amounts must not exceed 9999999999.99"},
	{Tags: []string{"date_only"}, Message: "Invalid date format"},
	{Tags: []string{"after_date"}, Message: "End date must be after start date"},
}

// Validate reports the first violated budget rule.
func (in *BudgetInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return validationError(validator.Struct(in), BudgetRules)
}

// dates must only be called after Validate succeeded.
func (in *BudgetInput) dates() (time.Time, time.Time) {
	start, _ := models.ParseDate(in.StartDate)
	end, _ := models.ParseDate(in.EndDate)
	return start, end
}

// SetActiveInput is the request body for toggling a budget's active flag.
type SetActiveInput struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetActiveRules lists activation validation messages.
var SetActiveRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "is_active is required"},
}

// ExpenseInput is the request body for recording an expense.
type ExpenseInput struct {
	Date        string   `json:"date" binding:"required,date_only"`
	Category    string   `json:"category" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required,gt=0,money,lte=9999999999.99"`
	Description string   `json:"description" binding:"max=500"`
	BudgetID    *uint    `json:"budgetId"`
}

// ExpenseRules lists expense validation messages in reporting order.
var ExpenseRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "Date, category, and amount are required"},
	{Tags: []string{"gt"}, Message: "Amount must be greater than 0"},
	{Tags: []string{"money"}, Message: "Amount can have at most two decimal places"},
	{Tags: []string{"lte"}, Message: "Amount must not exceed 9999999999.99"},
	{Tags: []string{"date_only"}, Message: "Invalid date format"},
	{Tags: []string{"max"}, Message: "Description is too long"},
}

// Validate reports the first violated expense rule.
func (in *ExpenseInput) Validate() error {
	in.Category = strings.TrimSpace(in.Category)
	return validationError(validator.Struct(in), ExpenseRules)
}

// RegisterInput is the request body for registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRules lists registration validation messages.
var RegisterRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "All fields are required"},
}

// LoginInput is the request body for login. Username may also hold an email.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRules lists login validation messages.
var LoginRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "Username and password are required"},
}

// CategoryInput is the request body for creating a category.
type CategoryInput struct {
	Name string `json:"name" binding:"required"`
}

// CategoryRules lists category validation messages.
var CategoryRules = []validator.Rule{
	{Tags: []string{"required"}, Message: "Category name is required"},
}

// BindingError converts an error from binding a request body into an
// AppError. Validation failures report the first matching rule; anything else
// means the body could not be decoded.
func BindingError(err error, rules []validator.Rule) error {
	if err == nil {
		return nil
	}
	if msg, ok := validator.FirstViolation(err, rules); ok {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
	}
	return apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body"), err)
}

func validationError(err error, rules []validator.Rule) error {
	if err == nil {
		return nil
	}
	if msg, ok := validator.FirstViolation(err, rules); ok {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err)
}
