package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitboard/habitboard/config"
	"github.com/habitboard/habitboard/controllers"
	"github.com/habitboard/habitboard/middleware"
	"github.com/habitboard/habitboard/services"
	"github.com/habitboard/habitboard/utils"
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
	r.Use(middleware.RequestID())
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
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	actionService := services.NewActionService(db, utils.NewRedisKV(utils.GetRedis()))
	habitService := services.NewHabitService(db)

	authController := controllers.NewAuthController(db)
	actionController := controllers.NewActionController(actionService)
	habitController := controllers.NewHabitController(habitService)
	draftController := controllers.NewDraftController(habitService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.GET("/actions", actionController.ListActions)

	habitsGroup := protected.Group("/habits")
	habitsGroup.GET("/feed", habitController.GetFeed)
	habitsGroup.GET("/scores", habitController.GetScores)
	habitsGroup.GET("/graph", habitController.GetGraph)

	manage := habitsGroup.Group("")
	manage.Use(middleware.RequireHabitManager())
	manage.GET("/export", habitController.ExportFeed)
	manage.POST("", habitController.CreateHabits)

	draftGroup := habitsGroup.Group("/draft")
	draftGroup.GET("", draftController.GetDraft)
	draftGroup.POST("/toggle", draftController.Toggle)
	draftGroup.PATCH("/entry", draftController.UpdateEntry)
	draftGroup.PUT("/type", draftController.SetType)
	draftGroup.POST("/submit", middleware.RequireHabitManager(), draftController.Submit)

	// Static segments (feed, draft, export) take priority over the id match.
	manage.GET("/:id", habitController.GetHabit)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
