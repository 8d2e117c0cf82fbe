package models

import "time"

// Task is a single todo item. CategoryID is nullable; when set it must
// reference a category belonging to the same user.
type Task struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index"`
	CategoryID *uint     `gorm:"index"`
	Text       string
	Done       bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskView is the task shape returned to clients, with the category name
// resolved for display. CategoryID and CategoryName are null for
// uncategorized tasks.
type TaskView struct {
	ID           uint    `json:"id"`
	Text         string  `json:"text"`
	Done         bool    `json:"done"`
	CategoryID   *uint   `json:"category_id"`
	CategoryName *string `json:"category_name"`
}
