package models

import "time"

// DefaultCategoryNames are the shared categories visible to every user.
var DefaultCategoryNames = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Education",
	"Housing",
	"Other",
}

// Category is an expense category. A nil UserID marks a global category.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_categories_owner_name,priority:2" json:"name"`
	UserID    *uint     `gorm:"uniqueIndex:idx_categories_owner_name,priority:1" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
