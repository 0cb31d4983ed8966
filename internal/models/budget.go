package models

import "time"

// Budget is a user's spending plan over a date range. At most one budget per
// user is active at a time.
type Budget struct {
	Base
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	MonthlyIncome float64   `gorm:"type:numeric(12,2);not null" json:"monthly_income"`
	StartDate     time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null" json:"end_date"`
	IsActive      bool      `gorm:"not null;default:false" json:"is_active"`

	// Relationships
	Categories []BudgetCategory `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// BudgetCategory is the amount a budget allocates to one category.
type BudgetCategory struct {
	Base
	BudgetID        uint    `gorm:"not null;uniqueIndex:idx_budget_categories_budget_name,priority:1" json:"budget_id"`
	CategoryName    string  `gorm:"size:100;not null;uniqueIndex:idx_budget_categories_budget_name,priority:2" json:"category_name"`
	AllocatedAmount float64 `gorm:"type:numeric(12,2);not null;default:0" json:"allocated_amount"`
}
