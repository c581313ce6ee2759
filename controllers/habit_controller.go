package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/progression"
	"github.com/sproutlog/sproutlog/utils"
)

// HabitController handles recurring daily habits. Logging a habit awards XP
// at most once per habit per calendar day in the user's timezone.
type HabitController struct {
	db       *gorm.DB
	rewarder *Rewarder
}

// NewHabitController creates a HabitController.
func NewHabitController(db *gorm.DB, rewarder *Rewarder) *HabitController {
	return &HabitController{db: db, rewarder: rewarder}
}

// Create stores a new habit.
func (h *HabitController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Name  string `json:"name" binding:"required,min=1,max=255"`
		Notes string `json:"notes"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	habit := models.Habit{
		UserID: userID,
		Name:   utils.Sanitize(strings.TrimSpace(req.Name)),
		Notes:  utils.Sanitize(req.Notes),
	}
	if habit.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "name must not be empty")
		return
	}

	if err := h.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create habit")
		return
	}

	utils.Success(ctx, gin.H{"habit": habit})
}

// List returns the caller's habits with today's completion flag.
func (h *HabitController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := h.db.Model(&models.Habit{}).Where("user_id = ?", userID)
	if ctx.Query("archived") != "true" {
		query = query.Where("archived_at IS NULL")
	}

	var habits []models.Habit
	if err := query.Order("created_at ASC").Find(&habits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list habits")
		return
	}

	today := h.localDay(userID, time.Now())

	var doneIDs []uint
	if len(habits) > 0 {
		h.db.Model(&models.HabitLog{}).
			Where("user_id = ? AND day = ?", userID, today).
			Pluck("habit_id", &doneIDs)
	}
	doneSet := make(map[uint]bool, len(doneIDs))
	for _, id := range doneIDs {
		doneSet[id] = true
	}

	type habitView struct {
		models.Habit
		DoneToday bool `json:"done_today"`
	}
	views := make([]habitView, 0, len(habits))
	for _, habit := range habits {
		views = append(views, habitView{Habit: habit, DoneToday: doneSet[habit.ID]})
	}

	utils.Success(ctx, gin.H{"habits": views, "day": today})
}

// Log records today's completion of a habit and awards XP. A repeat log on
// the same day returns 409 and awards nothing.
func (h *HabitController) Log(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "habit not found")
		return
	}
	if habit.ArchivedAt != nil {
		utils.Error(ctx, http.StatusConflict, 40941, "habit is archived")
		return
	}

	day := h.localDay(userID, time.Now())
	log := models.HabitLog{
		HabitID: habit.ID,
		UserID:  userID,
		Day:     day,
	}

	// The unique index on (habit_id, day) is the idempotency guard; a
	// duplicate insert is reported, not retried.
	result := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&log)
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to log habit")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40940, "habit already logged today")
		return
	}

	outcome := h.rewarder.Apply(ctx.Request.Context(), userID, config.Get().HabitXP, ReasonHabit)

	utils.Success(ctx, gin.H{
		"habit":  habit,
		"day":    day,
		"reward": outcome,
	})
}

// Archive hides a habit from the active list without losing its history.
func (h *HabitController) Archive(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	result := h.db.Model(&models.Habit{}).
		Where("id = ? AND user_id = ? AND archived_at IS NULL", ctx.Param("id"), userID).
		Update("archived_at", now)
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to archive habit")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40440, "habit not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "archived"})
}

// Delete removes a habit and, via the FK constraint, its logs.
func (h *HabitController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		Delete(&models.Habit{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to delete habit")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40440, "habit not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "deleted"})
}

// localDay formats now as YYYY-MM-DD in the user's configured timezone.
func (h *HabitController) localDay(userID uint, now time.Time) string {
	tz := h.rewarder.userTimezone(userID)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc).Format(progression.DateLayout)
}
