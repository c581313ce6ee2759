package models

import "time"

// Pet is the user's virtual companion. Stage is derived from the owner's
// level when the pet is read, it is stored only so list queries stay cheap.
type Pet struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string     `gorm:"size:64;not null" json:"name"`
	Species   string     `gorm:"size:32;default:'sprout'" json:"species"`
	Stage     int        `gorm:"default:1" json:"stage"`
	LastFedAt *time.Time `json:"last_fed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
