package models

import "time"

// DailyActivity counts authenticated API writes per user per day. Pure
// observability; nothing in the reward path reads it.
type DailyActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_activity_user_date" json:"user_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_activity_user_date" json:"date"`
	Count     int       `gorm:"default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
