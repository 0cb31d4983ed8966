package models

import "time"

// Expense is a single recorded spend, optionally attributed to a budget.
type Expense struct {
	Base
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Amount      float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string    `gorm:"size:500;not null;default:''" json:"description"`
	BudgetID    *uint     `gorm:"index" json:"budget_id"`

	// Populated by list queries joining budgets.
	BudgetName *string `gorm:"->;-:migration" json:"budget_name,omitempty"`

	Budget *Budget `gorm:"foreignKey:BudgetID;constraint:OnDelete:SET NULL" json:"-"`
}
