package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAchievements(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	rules := []Rule{
		{ID: "streak-7", Requirement: RequireStreak, Value: 7, BonusXP: 75},
		{ID: "entries-10", Requirement: RequireEntries, Value: 10, BonusXP: 50},
		{ID: "xp-500", Requirement: RequireXP, Value: 500, BonusXP: 50},
	}

	t.Run("unlocks every rule the stats satisfy", func(t *testing.T) {
		stats := Stats{Entries: 12, Streak: 7, XP: 120}
		got := EvaluateAchievements(9, stats, rules, nil, now)

		require.Len(t, got, 2)
		ids := []string{got[0].AchievementID, got[1].AchievementID}
		assert.Contains(t, ids, "streak-7")
		assert.Contains(t, ids, "entries-10")
		for _, u := range got {
			assert.Equal(t, uint(9), u.UserID)
			assert.Equal(t, now, u.DateUnlocked)
		}
	})

	t.Run("already unlocked rules are never re-emitted", func(t *testing.T) {
		stats := Stats{Streak: 7}
		first := EvaluateAchievements(9, stats, rules, nil, now)
		require.Len(t, first, 1)
		assert.Equal(t, "streak-7", first[0].AchievementID)

		// Second pass with the first result persisted yields nothing.
		unlocked := map[string]bool{"streak-7": true}
		second := EvaluateAchievements(9, stats, rules, unlocked, now)
		assert.Empty(t, second)
	})

	t.Run("below threshold emits nothing", func(t *testing.T) {
		got := EvaluateAchievements(9, Stats{Entries: 9, Streak: 6, XP: 499}, rules, nil, now)
		assert.Empty(t, got)
	})

	t.Run("boundary value unlocks", func(t *testing.T) {
		got := EvaluateAchievements(9, Stats{XP: 500}, rules, nil, now)
		require.Len(t, got, 1)
		assert.Equal(t, "xp-500", got[0].AchievementID)
	})
}

func TestDefaultRulesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range DefaultRules {
		assert.False(t, seen[r.ID], "duplicate rule id %s", r.ID)
		seen[r.ID] = true
		assert.NotEmpty(t, r.Name)
		assert.Positive(t, r.Value)
		assert.Positive(t, r.BonusXP)
		assert.Contains(t, []Requirement{RequireEntries, RequireStreak, RequireXP}, r.Requirement)
	}
}

func TestRuleByID(t *testing.T) {
	r, ok := RuleByID(DefaultRules, "streak-7")
	require.True(t, ok)
	assert.Equal(t, 7, r.Value)

	_, ok = RuleByID(DefaultRules, "nope")
	assert.False(t, ok)
}
