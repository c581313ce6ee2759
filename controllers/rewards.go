package controllers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/progression"
	"github.com/sproutlog/sproutlog/utils"
)

// Reward reasons passed to the award engine, one per action type.
const (
	ReasonJournalEntry = "journal_entry"
	ReasonTask         = "task_completed"
	ReasonHabit        = "habit_completed"
	ReasonAchievement  = "achievement_bonus"
)

// Rewarder runs the post-action reward pipeline: XP award, streak update,
// achievement evaluation. Controllers call it after their primary write has
// committed; a reward failure never rolls the action back.
type Rewarder struct {
	db     *gorm.DB
	engine *progression.Engine
	rules  []progression.Rule
}

// NewRewarder builds the shared reward pipeline from loaded config.
func NewRewarder(db *gorm.DB) *Rewarder {
	cfg := config.Get()
	curve := progression.Curve{Base: cfg.LevelBase, Growth: cfg.LevelGrowth}
	return &Rewarder{
		db:     db,
		engine: progression.NewEngine(progression.NewGormStore(db), curve),
		rules:  progression.DefaultRules,
	}
}

// UnlockedBadge is the client-facing shape of a fresh unlock.
type UnlockedBadge struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	BonusXP      int       `json:"bonus_xp"`
	DateUnlocked time.Time `json:"date_unlocked"`
}

// RewardOutcome is attached to action responses so the client can surface
// level-up and unlock notifications.
type RewardOutcome struct {
	Award         *progression.AwardResult  `json:"award,omitempty"`
	RewardPending bool                      `json:"reward_pending,omitempty"`
	Streak        *progression.StreakResult `json:"streak,omitempty"`
	Unlocked      []UnlockedBadge           `json:"achievements_unlocked,omitempty"`
}

// Apply runs the full pipeline for one completed action. Every step is
// best-effort past the primary action: an award that exhausts its retry
// budget is reported as pending and left for the client to reconcile.
func (r *Rewarder) Apply(ctx context.Context, userID uint, xp int, reason string) RewardOutcome {
	var out RewardOutcome

	res, err := r.engine.Award(ctx, userID, xp, reason)
	switch {
	case err == nil:
		out.Award = &res
	case errors.Is(err, progression.ErrInvalidAward):
		// Misconfigured XP amount; the action itself already succeeded.
		utils.Sugar.Errorw("invalid reward configuration", "user_id", userID, "xp", xp, "reason", reason)
		out.RewardPending = true
	default:
		utils.Sugar.Warnw("award failed, reward pending", "user_id", userID, "reason", reason, "err", err)
		out.RewardPending = true
	}

	streak := r.advanceStreak(ctx, userID)
	if streak != nil {
		out.Streak = streak
	}

	out.Unlocked = r.evaluateAchievements(ctx, userID)

	utils.InvalidateByPrefix("cache:progress:" + strconv.Itoa(int(userID)) + ":")
	return out
}

// advanceStreak applies the calendar-day streak rule inside a row-locked
// transaction and persists the result. Returns nil when the update could
// not be stored.
func (r *Rewarder) advanceStreak(ctx context.Context, userID uint) *progression.StreakResult {
	tz := r.userTimezone(userID)

	var result progression.StreakResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.StreakRecord
		missing := false
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&rec).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			missing = true
		}

		result = progression.NextStreak(progression.StreakState{
			Streak:           rec.Streak,
			LastActivityDate: rec.LastActivityDate,
		}, time.Now(), tz)

		rec.UserID = userID
		rec.Streak = result.Streak
		rec.LastActivityDate = result.LastActivityDate
		if result.Streak > rec.LongestStreak {
			rec.LongestStreak = result.Streak
		}
		if missing {
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		utils.Sugar.Warnw("streak update failed", "user_id", userID, "err", err)
		return nil
	}
	return &result
}

// evaluateAchievements re-reads derived stats, evaluates the rule table and
// persists any fresh unlocks. Unlock rows are write-once: the conflict
// clause makes a concurrent duplicate a silent no-op, and only rows this
// call actually inserted trigger bonus XP.
func (r *Rewarder) evaluateAchievements(ctx context.Context, userID uint) []UnlockedBadge {
	stats, err := r.collectStats(ctx, userID)
	if err != nil {
		utils.Sugar.Warnw("achievement stats read failed", "user_id", userID, "err", err)
		return nil
	}

	var unlocks []models.AchievementUnlock
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		utils.Sugar.Warnw("achievement unlock read failed", "user_id", userID, "err", err)
		return nil
	}
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
	}

	newly := progression.EvaluateAchievements(userID, stats, r.rules, unlocked, time.Now())
	if len(newly) == 0 {
		return nil
	}

	var badges []UnlockedBadge
	for i := range newly {
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&newly[i])
		if res.Error != nil {
			utils.Sugar.Warnw("achievement unlock write failed", "user_id", userID, "achievement", newly[i].AchievementID, "err", res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			// A concurrent request unlocked it first.
			continue
		}

		rule, ok := progression.RuleByID(r.rules, newly[i].AchievementID)
		if !ok {
			continue
		}
		badges = append(badges, UnlockedBadge{
			ID:           rule.ID,
			Name:         rule.Name,
			Description:  rule.Description,
			BonusXP:      rule.BonusXP,
			DateUnlocked: newly[i].DateUnlocked,
		})

		if rule.BonusXP > 0 {
			if _, err := r.engine.Award(ctx, userID, rule.BonusXP, ReasonAchievement); err != nil {
				utils.Sugar.Warnw("achievement bonus award failed", "user_id", userID, "achievement", rule.ID, "err", err)
			}
		}
	}
	return badges
}

// collectStats builds the snapshot achievements are judged against.
func (r *Rewarder) collectStats(ctx context.Context, userID uint) (progression.Stats, error) {
	var entries int64
	if err := r.db.WithContext(ctx).Model(&models.Entry{}).Where("user_id = ?", userID).Count(&entries).Error; err != nil {
		return progression.Stats{}, err
	}

	var streak models.StreakRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Stats{}, err
	}

	var rec models.ProgressionRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Stats{}, err
	}

	return progression.Stats{
		Entries: int(entries),
		Streak:  streak.Streak,
		XP:      rec.TotalXP,
	}, nil
}

func (r *Rewarder) userTimezone(userID uint) string {
	var user models.User
	if err := r.db.Select("timezone").First(&user, userID).Error; err != nil {
		return config.Get().DefaultTimezone
	}
	if user.Timezone == "" {
		return config.Get().DefaultTimezone
	}
	return user.Timezone
}
