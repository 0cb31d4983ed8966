package services

import (
	"context"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/events"
	"budgetly/internal/models"
)

const exportSheet = "Expenses"

// expenseService handles expense recording.
type expenseService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewExpenseService creates a new ExpenseServicer. A nil publisher disables events.
func NewExpenseService(db *gorm.DB, publisher events.Publisher) ExpenseServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &expenseService{db: db, publisher: publisher}
}

// CreateExpense records an expense in a category visible to the user,
// optionally attributed to one of the user's budgets.
func (s *expenseService) CreateExpense(userID uint, input ExpenseInput) (*models.Expense, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Scopes(visibleTo(userID)).
		Where("name = ?", input.Category).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrInvalidCategory
	}

	// A zero budget id means "no budget", the same as leaving it out.
	var budgetID *uint
	if input.BudgetID != nil && *input.BudgetID != 0 {
		if err := s.db.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", *input.BudgetID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrInvalidBudget
		}
		budgetID = input.BudgetID
	}

	date, _ := models.ParseDate(input.Date)
	expense := &models.Expense{
		UserID:      userID,
		Date:        date,
		Category:    input.Category,
		Amount:      *input.Amount,
		Description: input.Description,
		BudgetID:    budgetID,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publisher.Publish(context.Background(), events.New(events.ExpenseCreated, userID, expense.ID, map[string]any{
		"category":  expense.Category,
		"amount":    expense.Amount,
		"budget_id": expense.BudgetID,
	}))
	return expense, nil
}

// GetUserExpenses returns the user's expenses with their budget names,
// latest first.
func (s *expenseService) GetUserExpenses(userID uint) ([]models.Expense, error) {
	expenses := []models.Expense{}
	if err := expensesWithBudgetName(s.db, userID).
		Order("expenses.date DESC, expenses.created_at DESC, expenses.id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// DeleteExpense removes one of the user's expenses.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}

	s.publisher.Publish(context.Background(), events.New(events.ExpenseDeleted, userID, expenseID, nil))
	return nil
}

// ExportExpenses renders the user's expense list as an xlsx workbook.
func (s *expenseService) ExportExpenses(userID uint) ([]byte, error) {
	expenses, err := s.GetUserExpenses(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	headers := []string{"Date", "Category", "Amount", "Description", "Budget"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}

	for idx, e := range expenses {
		row := idx + 2
		budget := ""
		if e.BudgetName != nil {
			budget = *e.BudgetName
		}
		values := []interface{}{e.Date.Format(models.DateLayout), e.Category, e.Amount, e.Description, budget}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 12)
	f.SetColWidth(exportSheet, "B", "B", 18)
	f.SetColWidth(exportSheet, "C", "C", 12)
	f.SetColWidth(exportSheet, "D", "D", 40)
	f.SetColWidth(exportSheet, "E", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
