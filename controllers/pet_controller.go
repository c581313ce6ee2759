package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/utils"
)

// PetController handles the user's companion. The pet does not grant XP;
// its growth stage is a projection of the owner's level.
type PetController struct {
	db *gorm.DB
}

// NewPetController creates a PetController.
func NewPetController(db *gorm.DB) *PetController {
	return &PetController{db: db}
}

// stageForLevel maps owner level to growth stage.
func stageForLevel(level int) int {
	switch {
	case level >= 40:
		return 5
	case level >= 25:
		return 4
	case level >= 10:
		return 3
	case level >= 5:
		return 2
	default:
		return 1
	}
}

// Get returns the caller's pet, creating a default one on first access.
func (p *PetController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	pet, err := p.getOrCreate(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load pet")
		return
	}

	utils.Success(ctx, gin.H{"pet": pet})
}

// Rename changes the pet's name.
func (p *PetController) Rename(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Name string `json:"name" binding:"required,min=1,max=64"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "name must not be empty")
		return
	}

	pet, err := p.getOrCreate(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load pet")
		return
	}

	if err := p.db.Model(pet).Update("name", name).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to rename pet")
		return
	}
	pet.Name = name

	utils.Success(ctx, gin.H{"pet": pet})
}

// Feed records a feeding. Purely cosmetic, no progression effect.
func (p *PetController) Feed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	pet, err := p.getOrCreate(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load pet")
		return
	}

	now := time.Now()
	if err := p.db.Model(pet).Update("last_fed_at", now).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to feed pet")
		return
	}
	pet.LastFedAt = &now

	utils.Success(ctx, gin.H{"pet": pet})
}

// getOrCreate loads the pet and refreshes its stage from the owner's
// current level. First access creates a default sprout.
func (p *PetController) getOrCreate(userID uint) (*models.Pet, error) {
	var pet models.Pet
	err := p.db.Where("user_id = ?", userID).First(&pet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pet = models.Pet{
			UserID:  userID,
			Name:    "Sprout",
			Species: "sprout",
			Stage:   1,
		}
		// A racing first access may have created the row already.
		if createErr := p.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pet).Error; createErr != nil {
			return nil, createErr
		}
		if pet.ID == 0 {
			if err := p.db.Where("user_id = ?", userID).First(&pet).Error; err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	var rec models.ProgressionRecord
	if err := p.db.First(&rec, "user_id = ?", userID).Error; err == nil {
		if stage := stageForLevel(rec.Level); stage != pet.Stage {
			if err := p.db.Model(&pet).Update("stage", stage).Error; err == nil {
				pet.Stage = stage
			}
		}
	}

	return &pet, nil
}
