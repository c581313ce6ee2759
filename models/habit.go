package models

import (
	"time"

	"gorm.io/gorm"
)

// Habit is a recurring daily practice.
type Habit struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Notes      string         `gorm:"type:text" json:"notes"`
	ArchivedAt *time.Time     `json:"archived_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Logs       []HabitLog     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// HabitLog records one completed day for a habit. The unique index keeps at
// most one log per habit per calendar day, which is what makes repeat
// completions award nothing.
type HabitLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HabitID   uint      `gorm:"not null;uniqueIndex:idx_habit_day" json:"habit_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Day       string    `gorm:"size:10;not null;uniqueIndex:idx_habit_day" json:"day"` // YYYY-MM-DD in the user's zone
	CreatedAt time.Time `json:"created_at"`
}
