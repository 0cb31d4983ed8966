package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// categoryService handles the category catalog.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// GetUserCategories returns the global categories and the user's own, by name.
func (s *categoryService) GetUserCategories(userID uint) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.Scopes(visibleTo(userID)).
		Order("name ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateCategory adds a category owned by the user. Names already visible to
// the user, global ones included, are rejected.
func (s *categoryService) CreateCategory(userID uint, name string) (*models.Category, error) {
	name = trimName(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Scopes(visibleTo(userID)).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrCategoryExists
	}

	category := &models.Category{Name: name, UserID: &userID}
	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}
