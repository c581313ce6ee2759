package progression

import "time"

// Streak transitions returned by NextStreak.
const (
	StreakSameDay   = "same-day"
	StreakContinued = "continued"
	StreakReset     = "reset"
)

// DateLayout is the calendar-date form used for streak bookkeeping.
const DateLayout = "2006-01-02"

// StreakState is the caller-owned streak snapshot. LastActivityDate is a
// DateLayout string, empty for a user with no prior activity.
type StreakState struct {
	Streak           int
	LastActivityDate string
}

// StreakResult is the updated state plus which rule fired.
type StreakResult struct {
	Streak           int    `json:"streak"`
	LastActivityDate string `json:"last_activity_date"`
	Transition       string `json:"transition"`
}

// NextStreak applies the daily streak rule by comparing calendar days in the
// given IANA zone (UTC when tz is empty or unknown). The comparison is
// date-to-date, not elapsed-hours: acting at 23:50 and again at 00:10 the
// next day continues the streak.
func NextStreak(current StreakState, now time.Time, tz string) StreakResult {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	today := now.In(loc).Format(DateLayout)

	if current.LastActivityDate == "" {
		return StreakResult{Streak: 1, LastActivityDate: today, Transition: StreakReset}
	}

	last, err := time.ParseInLocation(DateLayout, current.LastActivityDate, loc)
	if err != nil {
		return StreakResult{Streak: 1, LastActivityDate: today, Transition: StreakReset}
	}

	switch today {
	case last.Format(DateLayout):
		return StreakResult{Streak: current.Streak, LastActivityDate: current.LastActivityDate, Transition: StreakSameDay}
	case last.AddDate(0, 0, 1).Format(DateLayout):
		return StreakResult{Streak: current.Streak + 1, LastActivityDate: today, Transition: StreakContinued}
	default:
		// Gap of two or more days, or a clock that went backwards.
		return StreakResult{Streak: 1, LastActivityDate: today, Transition: StreakReset}
	}
}
