package progression

import (
	"context"
	"errors"
	"time"

	"github.com/sproutlog/sproutlog/models"
)

var (
	// ErrInvalidAward marks a non-positive XP delta. Caller error, no write
	// happens and nothing should retry it.
	ErrInvalidAward = errors.New("progression: xp delta must be a positive integer")

	// ErrAwardFailed marks a transaction that could not commit within the
	// store's retry budget. Transient; the caller may retry the award without
	// rolling back the action that triggered it.
	ErrAwardFailed = errors.New("progression: award transaction failed")
)

// MaxLevelsPerAward bounds how many levels one award can cross, so a corrupt
// or malicious delta cannot spin the allocation loop.
const MaxLevelsPerAward = 100

// RecordStore is the atomic transaction primitive the engine runs against.
// Update loads (or default-initializes) the user's record, applies mutate,
// and persists the result atomically with respect to concurrent updates of
// the same user. Implementations retry on conflict; the mutate function must
// therefore be safe to re-run.
type RecordStore interface {
	Update(ctx context.Context, userID uint, mutate func(rec *models.ProgressionRecord) error) error
}

// AwardResult reports what a single award did.
type AwardResult struct {
	NewLevel     int  `json:"new_level"`
	NewXP        int  `json:"new_xp"`
	TotalXP      int  `json:"total_xp"`
	LeveledUp    bool `json:"leveled_up"`
	LevelsGained int  `json:"levels_gained"`
	XPAllocated  int  `json:"xp_allocated"`
}

// Engine applies XP awards to per-user progression records.
type Engine struct {
	store RecordStore
	curve Curve
	now   func() time.Time
}

// NewEngine builds an award engine over the given store and curve.
func NewEngine(store RecordStore, curve Curve) *Engine {
	return &Engine{store: store, curve: curve, now: time.Now}
}

// Award atomically adds delta XP to the user's record, advancing levels as
// thresholds are crossed. The whole read-modify-write serializes against
// concurrent awards to the same user; on conflict the store re-runs the
// body, which touches nothing outside the record.
func (e *Engine) Award(ctx context.Context, userID uint, delta int, reason string) (AwardResult, error) {
	if delta <= 0 {
		return AwardResult{}, ErrInvalidAward
	}

	var res AwardResult
	err := e.store.Update(ctx, userID, func(rec *models.ProgressionRecord) error {
		if rec.Level < 1 {
			rec.Level = 1
		}

		remaining := delta
		levelsGained := 0
		for remaining > 0 {
			room := e.curve.StepFor(rec.Level) - rec.XP
			if remaining < room {
				rec.XP += remaining
				rec.TotalXP += remaining
				remaining = 0
				break
			}
			rec.TotalXP += room
			remaining -= room
			rec.XP = 0
			rec.Level++
			levelsGained++
			if levelsGained >= MaxLevelsPerAward {
				break
			}
		}
		rec.LastActiveAt = e.now()

		res = AwardResult{
			NewLevel:     rec.Level,
			NewXP:        rec.XP,
			TotalXP:      rec.TotalXP,
			LeveledUp:    levelsGained > 0,
			LevelsGained: levelsGained,
			XPAllocated:  delta - remaining,
		}
		return nil
	})
	if err != nil {
		return AwardResult{}, errors.Join(ErrAwardFailed, err)
	}
	return res, nil
}
