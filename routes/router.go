package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sproutlog/sproutlog/config"
	"github.com/sproutlog/sproutlog/controllers"
	"github.com/sproutlog/sproutlog/middleware"
	"github.com/sproutlog/sproutlog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.RateLimitMiddleware())

	rewarder := controllers.NewRewarder(db)
	authController := controllers.NewAuthController(db)
	entryController := controllers.NewEntryController(db, rewarder)
	taskController := controllers.NewTaskController(db, rewarder)
	habitController := controllers.NewHabitController(db, rewarder)
	petController := controllers.NewPetController(db)
	progressController := controllers.NewProgressController(db)

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/logout", authController.Logout)
			auth.GET("/oauth/:provider", authController.OAuthRedirect)
			auth.GET("/oauth/:provider/callback", authController.OAuthCallback)
		}

		api.GET("/users/:username", authController.Profile)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		authed.Use(middleware.ActivityRecorder(db))
		{
			authed.GET("/me", authController.Me)
			authed.PATCH("/me", authController.UpdateProfile)

			authed.POST("/entries", entryController.Create)
			authed.GET("/entries", entryController.List)
			authed.GET("/entries/:id", entryController.Get)
			authed.PUT("/entries/:id", entryController.Update)
			authed.DELETE("/entries/:id", entryController.Delete)

			authed.POST("/tasks", taskController.Create)
			authed.GET("/tasks", taskController.List)
			authed.PUT("/tasks/:id", taskController.Update)
			authed.POST("/tasks/:id/complete", taskController.Complete)
			authed.DELETE("/tasks/:id", taskController.Delete)

			authed.POST("/habits", habitController.Create)
			authed.GET("/habits", habitController.List)
			authed.POST("/habits/:id/log", habitController.Log)
			authed.POST("/habits/:id/archive", habitController.Archive)
			authed.DELETE("/habits/:id", habitController.Delete)

			authed.GET("/pet", petController.Get)
			authed.PATCH("/pet", petController.Rename)
			authed.POST("/pet/feed", petController.Feed)

			authed.GET("/progress", progressController.Progression)
			authed.GET("/progress/streak", progressController.Streak)
			authed.GET("/progress/achievements", progressController.Achievements)
		}
	}

	return r
}
