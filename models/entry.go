package models

import (
	"time"

	"gorm.io/gorm"
)

// Entry represents a single journal entry. PublicID is exposed to clients
// instead of the numeric primary key so entries cannot be enumerated.
type Entry struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	PublicID  string         `gorm:"size:36;uniqueIndex;not null" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Title     string         `gorm:"size:255" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Mood      string         `gorm:"size:32" json:"mood"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
