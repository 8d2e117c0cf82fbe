package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/isdelr/taskdeck-be/internal/models"
	"github.com/isdelr/taskdeck-be/internal/patch"
)

// TaskPatch carries the fields of a partial task update. The patch
// wrappers keep "field omitted" distinct from "field set to its zero
// value", so done:false and text:"" are honored.
type TaskPatch struct {
	Text       patch.Field[string] `json:"text"`
	Done       patch.Field[bool]   `json:"done"`
	CategoryID patch.Field[uint]   `json:"category_id"`
}

// TaskServiceProvider defines the interface for task CRUD. Every method
// takes the owner id as a mandatory filter.
type TaskServiceProvider interface {
	Create(ctx context.Context, userID uint, text string, done bool, categoryID *uint) (models.TaskView, error)
	List(ctx context.Context, userID uint) ([]models.TaskView, error)
	ListByCategory(ctx context.Context, userID, categoryID uint) ([]models.TaskView, error)
	Get(ctx context.Context, userID, id uint) (models.TaskView, error)
	Update(ctx context.Context, userID, id uint, p TaskPatch) (models.TaskView, error)
	Delete(ctx context.Context, userID, id uint) error
}

// TaskService provides owner-scoped task persistence.
type TaskService struct {
	db *gorm.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// Create stores a new task. A category reference must point at a
// category of the same owner; anything else is ErrInvalidReference.
func (s *TaskService) Create(ctx context.Context, userID uint, text string, done bool, categoryID *uint) (models.TaskView, error) {
	db := s.db.WithContext(ctx)
	if categoryID != nil {
		if err := s.checkCategory(db, userID, *categoryID); err != nil {
			return models.TaskView{}, err
		}
	}

	task := models.Task{
		UserID:     userID,
		Text:       text,
		Done:       done,
		CategoryID: categoryID,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.TaskView{}, fmt.Errorf("create task: %w", err)
	}
	return s.view(db, userID, task)
}

// List returns all tasks belonging to the owner.
func (s *TaskService) List(ctx context.Context, userID uint) ([]models.TaskView, error) {
	db := s.db.WithContext(ctx)
	var tasks []models.Task
	if err := db.Where("user_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return s.views(db, userID, tasks)
}

// ListByCategory returns the owner's tasks filed under one category.
func (s *TaskService) ListByCategory(ctx context.Context, userID, categoryID uint) ([]models.TaskView, error) {
	db := s.db.WithContext(ctx)
	var tasks []models.Task
	err := db.Where("user_id = ? AND category_id = ?", userID, categoryID).Order("id").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks by category: %w", err)
	}
	return s.views(db, userID, tasks)
}

// Get returns one task. A task owned by someone else is reported as
// ErrNotFound, same as a missing one.
func (s *TaskService) Get(ctx context.Context, userID, id uint) (models.TaskView, error) {
	db := s.db.WithContext(ctx)
	task, err := s.find(db, userID, id)
	if err != nil {
		return models.TaskView{}, err
	}
	return s.view(db, userID, task)
}

// Update applies a partial update. Fields absent from the patch stay
// untouched; category_id set to null clears the reference, and a new
// category_id is re-validated against the owner's categories.
func (s *TaskService) Update(ctx context.Context, userID, id uint, p TaskPatch) (models.TaskView, error) {
	db := s.db.WithContext(ctx)
	task, err := s.find(db, userID, id)
	if err != nil {
		return models.TaskView{}, err
	}

	if text, ok := p.Text.Get(); ok {
		task.Text = text
	}
	if done, ok := p.Done.Get(); ok {
		task.Done = done
	}
	if p.CategoryID.Present() {
		if categoryID, ok := p.CategoryID.Get(); ok {
			if err := s.checkCategory(db, userID, categoryID); err != nil {
				return models.TaskView{}, err
			}
			task.CategoryID = &categoryID
		} else {
			task.CategoryID = nil
		}
	}

	if err := db.Save(&task).Error; err != nil {
		return models.TaskView{}, fmt.Errorf("update task: %w", err)
	}
	return s.view(db, userID, task)
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskService) find(db *gorm.DB, userID, id uint) (models.Task, error) {
	var task models.Task
	err := db.Where("user_id = ? AND id = ?", userID, id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) checkCategory(db *gorm.DB, userID, categoryID uint) error {
	var count int64
	err := db.Model(&models.Category{}).Where("user_id = ? AND id = ?", userID, categoryID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}

func (s *TaskService) view(db *gorm.DB, userID uint, task models.Task) (models.TaskView, error) {
	v := models.TaskView{
		ID:         task.ID,
		Text:       task.Text,
		Done:       task.Done,
		CategoryID: task.CategoryID,
	}
	if task.CategoryID != nil {
		var category models.Category
		err := db.Where("user_id = ? AND id = ?", userID, *task.CategoryID).First(&category).Error
		switch {
		case err == nil:
			v.CategoryName = &category.Name
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Dangling reference; render as uncategorized.
		default:
			return models.TaskView{}, fmt.Errorf("resolve category name: %w", err)
		}
	}
	return v, nil
}

func (s *TaskService) views(db *gorm.DB, userID uint, tasks []models.Task) ([]models.TaskView, error) {
	var categories []models.Category
	if err := db.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("resolve category names: %w", err)
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, task := range tasks {
		v := models.TaskView{
			ID:         task.ID,
			Text:       task.Text,
			Done:       task.Done,
			CategoryID: task.CategoryID,
		}
		if task.CategoryID != nil {
			if name, ok := names[*task.CategoryID]; ok {
				v.CategoryName = &name
			}
		}
		views = append(views, v)
	}
	return views, nil
}
