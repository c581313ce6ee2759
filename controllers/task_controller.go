package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/utils"
)

// TaskController handles one-off to-do items. Completion awards XP exactly
// once per task; completing an already-done task is a no-op.
type TaskController struct {
	db       *gorm.DB
	rewarder *Rewarder
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB, rewarder *Rewarder) *TaskController {
	return &TaskController{db: db, rewarder: rewarder}
}

// Create stores a new task. No XP until it is completed.
func (t *TaskController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Title string     `json:"title" binding:"required,min=1,max=255"`
		Notes string     `json:"notes"`
		DueAt *time.Time `json:"due_at"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	task := models.Task{
		UserID: userID,
		Title:  utils.Sanitize(strings.TrimSpace(req.Title)),
		Notes:  utils.Sanitize(req.Notes),
		DueAt:  req.DueAt,
	}
	if task.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title must not be empty")
		return
	}

	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create task")
		return
	}

	utils.Success(ctx, gin.H{"task": task})
}

// List returns the caller's tasks. ?done=true/false filters by state.
func (t *TaskController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, size := parsePagination(ctx.Query("page"), ctx.Query("size"))

	query := t.db.Model(&models.Task{}).Where("user_id = ?", userID)
	switch ctx.Query("done") {
	case "true":
		query = query.Where("done = ?", true)
	case "false":
		query = query.Where("done = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count tasks")
		return
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list tasks")
		return
	}

	utils.Success(ctx, gin.H{
		"tasks": tasks,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// Update edits title, notes or due date. Done state changes only through
// Complete so XP cannot be earned by flipping a field.
func (t *TaskController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var task models.Task
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&task).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}

	type request struct {
		Title *string    `json:"title"`
		Notes *string    `json:"notes"`
		DueAt *time.Time `json:"due_at"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "title must not be empty")
			return
		}
		updates["title"] = title
	}
	if req.Notes != nil {
		updates["notes"] = utils.Sanitize(*req.Notes)
	}
	if req.DueAt != nil {
		updates["due_at"] = req.DueAt
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40032, "no fields to update")
		return
	}

	if err := t.db.Model(&task).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update task")
		return
	}

	utils.Success(ctx, gin.H{"task": task})
}

// Complete marks a task done and awards XP. The UPDATE is guarded on
// done = false so concurrent completions award at most once.
func (t *TaskController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var task models.Task
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&task).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}

	now := time.Now()
	result := t.db.Model(&models.Task{}).
		Where("id = ? AND user_id = ? AND done = ?", task.ID, userID, false).
		Updates(map[string]interface{}{"done": true, "completed_at": now})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to complete task")
		return
	}

	if result.RowsAffected == 0 {
		// Already completed, nothing more to award.
		utils.Success(ctx, gin.H{"task": task, "already_done": true})
		return
	}

	task.Done = true
	task.CompletedAt = &now

	outcome := t.rewarder.Apply(ctx.Request.Context(), userID, config.Get().TaskXP, ReasonTask)

	utils.Success(ctx, gin.H{
		"task":   task,
		"reward": outcome,
	})
}

// Delete removes a task.
func (t *TaskController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		Delete(&models.Task{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete task")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "deleted"})
}
