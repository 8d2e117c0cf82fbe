package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/isdelr/taskdeck-be/internal/models"
	"github.com/isdelr/taskdeck-be/internal/patch"
)

// CategoryPatch carries the fields of a partial category update.
type CategoryPatch struct {
	Name patch.Field[string] `json:"name"`
}

// CategoryServiceProvider defines the interface for category CRUD. Every
// method takes the owner id as a mandatory filter.
type CategoryServiceProvider interface {
	Create(ctx context.Context, userID uint, name string) (models.Category, error)
	List(ctx context.Context, userID uint) ([]models.Category, error)
	Get(ctx context.Context, userID, id uint) (models.Category, error)
	Update(ctx context.Context, userID, id uint, p CategoryPatch) (models.Category, error)
	Delete(ctx context.Context, userID, id uint) error
}

// CategoryService provides owner-scoped category persistence.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// Create stores a new category for the owner.
func (s *CategoryService) Create(ctx context.Context, userID uint, name string) (models.Category, error) {
	category := models.Category{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// List returns all categories belonging to the owner.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get returns one category. A category owned by someone else is
// reported as ErrNotFound, same as a missing one.
func (s *CategoryService) Get(ctx context.Context, userID, id uint) (models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// Update applies a partial update. Fields absent from the patch stay
// untouched.
func (s *CategoryService) Update(ctx context.Context, userID, id uint, p CategoryPatch) (models.Category, error) {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Category{}, err
	}

	if name, ok := p.Name.Get(); ok {
		category.Name = name
		if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
			return models.Category{}, fmt.Errorf("update category: %w", err)
		}
	}
	return category, nil
}

// Delete removes a category and clears category_id on every task of the
// same owner that references it. Both steps run in one transaction:
// either the category is gone and its tasks are uncategorized, or
// nothing changed.
func (s *CategoryService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}

		err := tx.Model(&models.Task{}).
			Where("user_id = ? AND category_id = ?", userID, id).
			Update("category_id", nil).Error
		if err != nil {
			return fmt.Errorf("clear task references: %w", err)
		}

		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
