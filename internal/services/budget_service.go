package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/events"
	"budgetly/internal/models"
)

// budgetService handles the budget lifecycle.
type budgetService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewBudgetService creates a new BudgetServicer. Events are published after
// each successful commit; a nil publisher disables them.
func NewBudgetService(db *gorm.DB, publisher events.Publisher) BudgetServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &budgetService{db: db, publisher: publisher}
}

// CreateBudget stores an inactive budget together with its allocations.
func (s *budgetService) CreateBudget(userID uint, input BudgetInput) (*models.Budget, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	start, end := input.dates()
	budget := &models.Budget{
		UserID:        userID,
		Name:          input.Name,
		MonthlyIncome: *input.MonthlyIncome,
		StartDate:     start,
		EndDate:       end,
		IsActive:      false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return err
		}
		return insertAllocations(tx, userID, budget.ID, input.Categories)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(events.BudgetCreated, userID, budget.ID, map[string]any{"name": budget.Name})
	return budget, nil
}

// ReplaceBudget overwrites a budget's fields and its whole allocation set.
func (s *budgetService) ReplaceBudget(userID, budgetID uint, input BudgetInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	start, end := input.dates()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", budgetID, userID).
			Updates(map[string]interface{}{
				"name":           input.Name,
				"monthly_income": *input.MonthlyIncome,
				"start_date":     start,
				"end_date":       end,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrBudgetNotOwned
		}

		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.BudgetCategory{}).Error; err != nil {
			return err
		}
		return insertAllocations(tx, userID, budgetID, input.Categories)
	})
	if err != nil {
		return asAppError(err)
	}

	s.publish(events.BudgetUpdated, userID, budgetID, map[string]any{"name": input.Name})
	return nil
}

// SetBudgetActive toggles a budget's active flag. Activating a budget
// deactivates every other budget of the user in the same transaction, and
// nothing is changed when the target budget is not the user's.
func (s *budgetService) SetBudgetActive(userID, budgetID uint, isActive bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if isActive {
			// Touching every row of the user takes the row locks that
			// serialize concurrent activations.
			if err := tx.Model(&models.Budget{}).
				Where("user_id = ?", userID).
				UpdateColumn("is_active", false).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", budgetID, userID).
			Update("is_active", isActive)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrBudgetNotOwned
		}
		return nil
	})
	if err != nil {
		return asAppError(err)
	}

	eventType := events.BudgetDeactivated
	if isActive {
		eventType = events.BudgetActivated
	}
	s.publish(eventType, userID, budgetID, nil)
	return nil
}

// GetBudgetDetail returns a budget with its allocations ordered by category
// name and the spend recorded against it per category.
func (s *budgetService) GetBudgetDetail(userID, budgetID uint) (*BudgetDetail, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allocations := []models.BudgetCategory{}
	if err := s.db.Where("budget_id = ?", budgetID).Order("category_name ASC").Find(&allocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spend := []CategorySpend{}
	if err := s.db.Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS spent").
		Where("budget_id = ? AND user_id = ?", budgetID, userID).
		Group("category").
		Order("category ASC").
		Scan(&spend).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &BudgetDetail{Budget: budget, Categories: allocations, Expenses: spend}, nil
}

// GetUserBudgets returns the user's budgets, newest first.
func (s *budgetService) GetUserBudgets(userID uint) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetActiveBudget returns the user's active budget with its allocations.
func (s *budgetService) GetActiveBudget(userID uint) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("category_name ASC")
	}).Where("user_id = ? AND is_active = ?", userID, true).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrActiveBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// DeleteBudget removes a budget and its allocations. Expenses recorded
// against it are kept and detached.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", budgetID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrBudgetNotOwned
		}

		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.BudgetCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Expense{}).
			Where("budget_id = ?", budgetID).
			Update("budget_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{}).Error
	})
	if err != nil {
		return asAppError(err)
	}

	s.publish(events.BudgetDeleted, userID, budgetID, nil)
	return nil
}

func (s *budgetService) publish(t events.Type, userID, budgetID uint, payload map[string]any) {
	s.publisher.Publish(context.Background(), events.New(t, userID, budgetID, payload))
}

// insertAllocations upserts each allocation whose category is visible to the
// user. Blank names, negative amounts and unknown categories are skipped.
func insertAllocations(tx *gorm.DB, userID, budgetID uint, allocations []AllocationInput) error {
	for _, a := range allocations {
		name := trimName(a.Name)
		if name == "" || a.Amount < 0 {
			continue
		}

		var count int64
		if err := tx.Model(&models.Category{}).
			Scopes(visibleTo(userID)).
			Where("name = ?", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			continue
		}

		allocation := models.BudgetCategory{
			BudgetID:        budgetID,
			CategoryName:    name,
			AllocatedAmount: a.Amount,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "budget_id"}, {Name: "category_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"allocated_amount", "updated_at"}),
		}).Create(&allocation).Error; err != nil {
			return err
		}
	}
	return nil
}
