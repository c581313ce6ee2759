package progression

import (
	"time"

	"github.com/sproutlog/sproutlog/models"
)

// Requirement names the stat an achievement rule checks.
type Requirement string

const (
	RequireEntries Requirement = "entries"
	RequireStreak  Requirement = "streak"
	RequireXP      Requirement = "xp"
)

// Rule declares one unlockable badge.
type Rule struct {
	ID          string
	Name        string
	Description string
	Requirement Requirement
	Value       int
	BonusXP     int // awarded once when the badge unlocks
}

// Stats is the derived snapshot achievements are judged against.
type Stats struct {
	Entries int // lifetime journal entry count
	Streak  int // current consecutive-day streak
	XP      int // lifetime XP (ProgressionRecord.TotalXP)
}

func (s Stats) value(r Requirement) int {
	switch r {
	case RequireEntries:
		return s.Entries
	case RequireStreak:
		return s.Streak
	case RequireXP:
		return s.XP
	}
	return 0
}

// DefaultRules is the shipped badge set.
var DefaultRules = []Rule{
	{ID: "first-entry", Name: "First Words", Description: "Write your first journal entry", Requirement: RequireEntries, Value: 1, BonusXP: 25},
	{ID: "entries-10", Name: "Finding a Voice", Description: "Write 10 journal entries", Requirement: RequireEntries, Value: 10, BonusXP: 50},
	{ID: "entries-50", Name: "Chronicler", Description: "Write 50 journal entries", Requirement: RequireEntries, Value: 50, BonusXP: 100},
	{ID: "entries-200", Name: "Memoirist", Description: "Write 200 journal entries", Requirement: RequireEntries, Value: 200, BonusXP: 200},
	{ID: "streak-3", Name: "Warming Up", Description: "Keep a 3-day streak", Requirement: RequireStreak, Value: 3, BonusXP: 25},
	{ID: "streak-7", Name: "One Full Week", Description: "Keep a 7-day streak", Requirement: RequireStreak, Value: 7, BonusXP: 75},
	{ID: "streak-30", Name: "Habit Formed", Description: "Keep a 30-day streak", Requirement: RequireStreak, Value: 30, BonusXP: 200},
	{ID: "streak-100", Name: "Unbreakable", Description: "Keep a 100-day streak", Requirement: RequireStreak, Value: 100, BonusXP: 500},
	{ID: "xp-500", Name: "Sprouting", Description: "Earn 500 lifetime XP", Requirement: RequireXP, Value: 500, BonusXP: 50},
	{ID: "xp-2500", Name: "Growing Strong", Description: "Earn 2,500 lifetime XP", Requirement: RequireXP, Value: 2500, BonusXP: 100},
	{ID: "xp-10000", Name: "Deep Roots", Description: "Earn 10,000 lifetime XP", Requirement: RequireXP, Value: 10000, BonusXP: 250},
}

// EvaluateAchievements returns unlock rows for every rule whose requirement
// stats now meets and that is not already in unlocked. It performs no I/O;
// the caller persists the returned rows before the next evaluation, which is
// what makes a second pass with the same stats come back empty.
func EvaluateAchievements(userID uint, stats Stats, rules []Rule, unlocked map[string]bool, now time.Time) []models.AchievementUnlock {
	var newly []models.AchievementUnlock
	for _, r := range rules {
		if unlocked[r.ID] {
			continue
		}
		if stats.value(r.Requirement) >= r.Value {
			newly = append(newly, models.AchievementUnlock{
				UserID:        userID,
				AchievementID: r.ID,
				DateUnlocked:  now,
			})
		}
	}
	return newly
}

// RuleByID returns the rule with the given ID from rules, if any.
func RuleByID(rules []Rule, id string) (Rule, bool) {
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
