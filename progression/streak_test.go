package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name       string
		current    StreakState
		now        time.Time
		tz         string
		wantStreak int
		wantTrans  string
	}{
		{
			name:       "first ever activity",
			current:    StreakState{},
			now:        date("2025-01-10T09:00:00Z"),
			wantStreak: 1,
			wantTrans:  StreakReset,
		},
		{
			name:       "same day keeps streak",
			current:    StreakState{Streak: 4, LastActivityDate: "2025-01-10"},
			now:        date("2025-01-10T23:59:00Z"),
			wantStreak: 4,
			wantTrans:  StreakSameDay,
		},
		{
			name:       "next calendar day continues",
			current:    StreakState{Streak: 4, LastActivityDate: "2025-01-10"},
			now:        date("2025-01-11T00:01:00Z"),
			wantStreak: 5,
			wantTrans:  StreakContinued,
		},
		{
			name:       "two day gap resets",
			current:    StreakState{Streak: 9, LastActivityDate: "2025-01-10"},
			now:        date("2025-01-13T12:00:00Z"),
			wantStreak: 1,
			wantTrans:  StreakReset,
		},
		{
			name:       "clock went backwards resets",
			current:    StreakState{Streak: 9, LastActivityDate: "2025-01-10"},
			now:        date("2025-01-08T12:00:00Z"),
			wantStreak: 1,
			wantTrans:  StreakReset,
		},
		{
			name:       "month boundary continues",
			current:    StreakState{Streak: 2, LastActivityDate: "2025-01-31"},
			now:        date("2025-02-01T08:00:00Z"),
			wantStreak: 3,
			wantTrans:  StreakContinued,
		},
		{
			name:       "year boundary continues",
			current:    StreakState{Streak: 30, LastActivityDate: "2024-12-31"},
			now:        date("2025-01-01T08:00:00Z"),
			wantStreak: 31,
			wantTrans:  StreakContinued,
		},
		{
			name:       "garbage stored date resets",
			current:    StreakState{Streak: 5, LastActivityDate: "not-a-date"},
			now:        date("2025-01-10T09:00:00Z"),
			wantStreak: 1,
			wantTrans:  StreakReset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStreak(tt.current, tt.now, tt.tz)
			assert.Equal(t, tt.wantStreak, got.Streak)
			assert.Equal(t, tt.wantTrans, got.Transition)
		})
	}
}

// Late-evening activity followed by early-morning activity is consecutive
// days locally even though less than 24 hours elapsed, and the same two
// instants can be the same calendar day in a western zone.
func TestNextStreakTimezoneBoundary(t *testing.T) {
	// 23:30 Jan 10 in Tokyo was logged as that local date.
	current := StreakState{Streak: 1, LastActivityDate: "2025-01-10"}

	// 00:30 Jan 11 Tokyo time == 15:30 Jan 10 UTC.
	now := date("2025-01-10T15:30:00Z")

	got := NextStreak(current, now, "Asia/Tokyo")
	assert.Equal(t, StreakContinued, got.Transition)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, "2025-01-11", got.LastActivityDate)

	// Interpreted in UTC instead, the same instant is still Jan 10.
	got = NextStreak(current, now, "")
	assert.Equal(t, StreakSameDay, got.Transition)
	assert.Equal(t, 1, got.Streak)
}

func TestNextStreakSameDayStability(t *testing.T) {
	state := StreakState{Streak: 6, LastActivityDate: "2025-03-05"}
	for hour := 0; hour < 24; hour += 3 {
		now := time.Date(2025, 3, 5, hour, 15, 0, 0, time.UTC)
		got := NextStreak(state, now, "")
		assert.Equal(t, 6, got.Streak, "hour %d", hour)
		assert.Equal(t, StreakSameDay, got.Transition, "hour %d", hour)
	}
}

func TestNextStreakUnknownZoneFallsBackToUTC(t *testing.T) {
	got := NextStreak(StreakState{Streak: 1, LastActivityDate: "2025-01-10"}, date("2025-01-11T10:00:00Z"), "Mars/Olympus")
	assert.Equal(t, StreakContinued, got.Transition)
}
