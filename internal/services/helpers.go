package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// visibleTo restricts a categories query to global categories and the ones
// owned by userID.
func visibleTo(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id IS NULL OR user_id = ?)", userID)
	}
}

// expensesWithBudgetName selects the user's expenses joined to the name of
// the budget they are attributed to.
func expensesWithBudgetName(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Expense{}).
		Select("expenses.*, budgets.name AS budget_name").
		Joins("LEFT JOIN budgets ON budgets.id = expenses.budget_id").
		Where("expenses.user_id = ?", userID)
}

// asAppError passes AppErrors through and wraps anything else as an
// internal error.
func asAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}
