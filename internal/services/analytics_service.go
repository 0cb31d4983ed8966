package services

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

const (
	recentActivityLimit = 10

	warningThreshold  = 80.0
	criticalThreshold = 100.0
)

// analyticsService computes read-side aggregates of a user's spending.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// GetAnalytics runs the four dashboard queries concurrently. They share no
// transaction, so the result is not a point-in-time snapshot.
func (s *analyticsService) GetAnalytics(ctx context.Context, userID uint) (*Analytics, error) {
	result := &Analytics{
		CategoryData:   []CategoryTotal{},
		TimeData:       []MonthTotal{},
		RecentExpenses: []models.Expense{},
		BudgetAnalysis: []Reconciliation{},
	}

	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)

	g.Go(func() error {
		return db.Model(&models.Expense{}).
			Select("category, SUM(amount) AS total, COUNT(*) AS count, AVG(amount) AS average").
			Where("user_id = ?", userID).
			Group("category").
			Order("total DESC, category ASC").
			Scan(&result.CategoryData).Error
	})

	g.Go(func() error {
		month := s.monthExpr("date")
		return db.Model(&models.Expense{}).
			Select(month+" AS month, SUM(amount) AS total, COUNT(*) AS count").
			Where("user_id = ?", userID).
			Group(month).
			Order("month ASC").
			Scan(&result.TimeData).Error
	})

	g.Go(func() error {
		return expensesWithBudgetName(db, userID).
			Order("expenses.created_at DESC, expenses.id DESC").
			Limit(recentActivityLimit).
			Find(&result.RecentExpenses).Error
	})

	g.Go(func() error {
		rows, err := reconcileActiveBudget(db, userID)
		if err != nil {
			return err
		}
		result.BudgetAnalysis = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return result, nil
}

// GetBudgetAlerts reports the allocations of the active budget whose spend
// reached the warning or critical threshold, most used first.
func (s *analyticsService) GetBudgetAlerts(ctx context.Context, userID uint) ([]BudgetAlert, error) {
	rows, err := reconcileActiveBudget(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	alerts := []BudgetAlert{}
	for _, row := range rows {
		pct := PercentageUsed(row.SpentAmount, row.AllocatedAmount)
		var level string
		switch {
		case pct >= criticalThreshold:
			level = AlertCritical
		case pct >= warningThreshold:
			level = AlertWarning
		default:
			continue
		}
		alerts = append(alerts, BudgetAlert{Reconciliation: row, PercentageUsed: pct, Level: level})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PercentageUsed > alerts[j].PercentageUsed
	})
	return alerts, nil
}

// PercentageUsed is spent/allocated as a percentage rounded to two decimals.
// Nothing allocated counts as 0%.
func PercentageUsed(spent, allocated float64) float64 {
	if allocated <= 0 {
		return 0
	}
	return math.Round(spent/allocated*10000) / 100
}

// monthExpr formats a date column as YYYY-MM in the connected dialect.
func (s *analyticsService) monthExpr(column string) string {
	if s.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', " + column + ")"
	}
	return "to_char(" + column + ", 'YYYY-MM')"
}

// reconcileActiveBudget compares each allocation of the user's active budget
// with the matching expenses attributed to that budget.
func reconcileActiveBudget(db *gorm.DB, userID uint) ([]Reconciliation, error) {
	rows := []Reconciliation{}
	err := db.Table("budget_categories AS bc").
		Select(`bc.category_name,
			bc.allocated_amount,
			COALESCE(SUM(e.amount), 0) AS spent_amount,
			bc.allocated_amount - COALESCE(SUM(e.amount), 0) AS remaining_amount`).
		Joins("JOIN budgets b ON b.id = bc.budget_id").
		Joins("LEFT JOIN expenses e ON e.budget_id = b.id AND e.category = bc.category_name AND e.user_id = b.user_id").
		Where("b.user_id = ? AND b.is_active = ?", userID, true).
		Group("bc.id, bc.category_name, bc.allocated_amount").
		Order("bc.category_name ASC").
		Scan(&rows).Error
	return rows, err
}
