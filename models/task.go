package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a one-off to-do item. XP is awarded on the first completion only;
// CompletedAt stays set once the task has been done.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Done        bool           `gorm:"default:false" json:"done"`
	CompletedAt *time.Time     `json:"completed_at"`
	DueAt       *time.Time     `json:"due_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
