package models

import "time"

// ProgressionRecord holds a user's XP ledger state. It is mutated only
// inside the award transaction; no other code path may write these fields.
type ProgressionRecord struct {
	UserID       uint      `gorm:"primaryKey" json:"user_id"`
	Level        int       `gorm:"not null;default:1" json:"level"`
	XP           int       `gorm:"not null;default:0" json:"xp"`       // within the current level
	TotalXP      int       `gorm:"not null;default:0" json:"total_xp"` // lifetime, non-decreasing
	LastActiveAt time.Time `json:"last_active_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StreakRecord tracks consecutive-day activity. LastActivityDate is the
// calendar date (YYYY-MM-DD in the user's zone) of the last qualifying day.
type StreakRecord struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	Streak           int       `gorm:"not null;default:0" json:"streak"`
	LongestStreak    int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate string    `gorm:"size:10" json:"last_activity_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AchievementUnlock is one unlocked badge per user. Rows are written once
// when the badge unlocks and never updated after that.
type AchievementUnlock struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	DateUnlocked  time.Time `gorm:"not null" json:"date_unlocked"`
}
