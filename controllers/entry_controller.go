package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/utils"
)

const entryCacheTTL = 60 * time.Second

func entryCachePrefix(userID uint) string {
	return fmt.Sprintf("cache:entries:%d:", userID)
}

// EntryController handles journal entry CRUD. Creating an entry runs the
// reward pipeline; edits and deletes do not touch progression.
type EntryController struct {
	db       *gorm.DB
	rewarder *Rewarder
}

// NewEntryController creates an EntryController.
func NewEntryController(db *gorm.DB, rewarder *Rewarder) *EntryController {
	return &EntryController{db: db, rewarder: rewarder}
}

type entryRequest struct {
	Title   string `json:"title" binding:"max=255"`
	Content string `json:"content" binding:"required,min=1"`
	Mood    string `json:"mood" binding:"max=32"`
}

// Create stores a new journal entry and awards XP for it.
func (e *EntryController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req entryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	entry := models.Entry{
		PublicID: uuid.NewString(),
		UserID:   userID,
		Title:    utils.Sanitize(strings.TrimSpace(req.Title)),
		Content:  utils.Sanitize(req.Content),
		Mood:     strings.TrimSpace(req.Mood),
	}
	if strings.TrimSpace(entry.Content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "content must not be empty")
		return
	}

	if err := e.db.Create(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create entry")
		return
	}

	utils.InvalidateByPrefix(entryCachePrefix(userID))

	outcome := e.rewarder.Apply(ctx.Request.Context(), userID, config.Get().EntryXP, ReasonJournalEntry)

	utils.Success(ctx, gin.H{
		"entry":  entry,
		"reward": outcome,
	})
}

// List returns the caller's entries, newest first, paginated.
func (e *EntryController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, size := parsePagination(ctx.Query("page"), ctx.Query("size"))
	mood := strings.TrimSpace(ctx.Query("mood"))

	key := fmt.Sprintf("cache:entries:%d:p%d-s%d-m%s", userID, page, size, mood)
	if cached, hit := utils.CacheGetBytes(key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	query := e.db.Model(&models.Entry{}).Where("user_id = ?", userID)
	if mood != "" {
		query = query.Where("mood = ?", mood)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count entries")
		return
	}

	var entries []models.Entry
	if err := query.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list entries")
		return
	}

	payload := gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
		"size":    size,
	}
	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, entryCacheTTL)
	utils.Success(ctx, payload)
}

// Get returns a single entry by its public id.
func (e *EntryController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var entry models.Entry
	if err := e.db.Where("public_id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "entry not found")
		return
	}

	utils.Success(ctx, gin.H{"entry": entry})
}

// Update edits an existing entry. No XP is awarded for edits.
func (e *EntryController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var entry models.Entry
	if err := e.db.Where("public_id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "entry not found")
		return
	}

	type request struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Mood    *string `json:"mood"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "content must not be empty")
			return
		}
		updates["content"] = content
	}
	if req.Mood != nil {
		updates["mood"] = strings.TrimSpace(*req.Mood)
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "no fields to update")
		return
	}

	if err := e.db.Model(&entry).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update entry")
		return
	}

	utils.InvalidateByPrefix(entryCachePrefix(userID))
	utils.Success(ctx, gin.H{"entry": entry})
}

// Delete soft-deletes an entry. Already-awarded XP is kept.
func (e *EntryController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result := e.db.Where("public_id = ? AND user_id = ?", ctx.Param("id"), userID).
		Delete(&models.Entry{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete entry")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "entry not found")
		return
	}

	utils.InvalidateByPrefix(entryCachePrefix(userID))
	utils.Success(ctx, gin.H{"message": "deleted"})
}
