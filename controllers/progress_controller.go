package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/progression"
	"github.com/sproutlog/sproutlog/utils"
)

const progressCacheTTL = 60 * time.Second

// ProgressController exposes read-only progression state. Responses are
// cached in redis and invalidated by the reward pipeline on every award.
type ProgressController struct {
	db    *gorm.DB
	curve progression.Curve
	rules []progression.Rule
}

// NewProgressController creates a ProgressController.
func NewProgressController(db *gorm.DB) *ProgressController {
	cfg := config.Get()
	return &ProgressController{
		db:    db,
		curve: progression.Curve{Base: cfg.LevelBase, Growth: cfg.LevelGrowth},
		rules: progression.DefaultRules,
	}
}

func progressCacheKey(userID uint, section string) string {
	return "cache:progress:" + strconv.Itoa(int(userID)) + ":" + section
}

// Progression returns level, XP within the level, and progress toward the
// next level.
func (p *ProgressController) Progression(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	key := progressCacheKey(userID, "progression")
	if cached, hit := utils.CacheGetBytes(key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	rec := models.ProgressionRecord{UserID: userID, Level: 1}
	if err := p.db.First(&rec, "user_id = ?", userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load progression")
		return
	}

	step := p.curve.StepFor(rec.Level)
	payload := gin.H{
		"level":         rec.Level,
		"xp":            rec.XP,
		"total_xp":      rec.TotalXP,
		"step":          step,
		"xp_to_next":    step - rec.XP,
		"progress":      float64(rec.XP) / float64(step),
		"last_activity": rec.LastActiveAt,
	}

	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, progressCacheTTL)
	utils.Success(ctx, payload)
}

// Streak returns the current and longest streaks.
func (p *ProgressController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	key := progressCacheKey(userID, "streak")
	if cached, hit := utils.CacheGetBytes(key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	rec := models.StreakRecord{UserID: userID}
	if err := p.db.First(&rec, "user_id = ?", userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load streak")
		return
	}

	payload := gin.H{
		"streak":             rec.Streak,
		"longest_streak":     rec.LongestStreak,
		"last_activity_date": rec.LastActivityDate,
	}

	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, progressCacheTTL)
	utils.Success(ctx, payload)
}

// Achievements returns every rule with its unlock state for the caller.
func (p *ProgressController) Achievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	key := progressCacheKey(userID, "achievements")
	if cached, hit := utils.CacheGetBytes(key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	var unlocks []models.AchievementUnlock
	if err := p.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load achievements")
		return
	}

	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.DateUnlocked
	}

	type badgeView struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		BonusXP     int        `json:"bonus_xp"`
		Unlocked    bool       `json:"unlocked"`
		UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	}

	badges := make([]badgeView, 0, len(p.rules))
	for _, rule := range p.rules {
		view := badgeView{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			BonusXP:     rule.BonusXP,
		}
		if at, ok := unlockedAt[rule.ID]; ok {
			view.Unlocked = true
			view.UnlockedAt = &at
		}
		badges = append(badges, view)
	}

	payload := gin.H{
		"achievements": badges,
		"unlocked":     len(unlocks),
		"total":        len(p.rules),
	}

	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, progressCacheTTL)
	utils.Success(ctx, payload)
}
