package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetly/internal/models"
)

// SeedDefaultCategories inserts the shared categories every user can pick
// from. Safe to call repeatedly.
func SeedDefaultCategories(db *gorm.DB) error {
	for _, name := range models.DefaultCategoryNames {
		var count int64
		if err := db.Model(&models.Category{}).
			Where("name = ? AND user_id IS NULL", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
