package main

import (
	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/models"
	"github.com/sproutlog/sproutlog/routes"
	"github.com/sproutlog/sproutlog/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Entry{},
		&models.Task{},
		&models.Habit{},
		&models.HabitLog{},
		&models.Pet{},
		&models.ProgressionRecord{},
		&models.StreakRecord{},
		&models.AchievementUnlock{},
		&models.DailyActivity{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
