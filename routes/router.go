package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rorychadbourne-alt/gratitude-sub000/config"
	"github.com/rorychadbourne-alt/gratitude-sub000/controllers"
	"github.com/rorychadbourne-alt/gratitude-sub000/middleware"
	"github.com/rorychadbourne-alt/gratitude-sub000/push"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store *push.Store, sender push.Sender) *gin.Engine {
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
		// fallback to default recovery if logger failed to init
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

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	personal := streaks.NewPersonalTracker(streaks.NewGormStore(db))
	community := streaks.NewCommunityTracker(
		streaks.NewCommunityGormStore(db),
		streaks.NewGormMembership(db),
		streaks.NewGormEntries(db),
	)

	authController := controllers.NewAuthController(db)
	entryController := controllers.NewEntryController(db, personal, community)
	circleController := controllers.NewCircleController(db)
	streakController := controllers.NewStreakController(db, personal, community)
	pushController := controllers.NewPushController(db, store, sender)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.GET("/oauth/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/push/config", pushController.GetPublicConfig)

	// Reminder sweep for external schedulers; static bearer secret, not JWT
	api.POST("/push/reminders/run", pushController.RunSweep)
	api.GET("/push/test", pushController.BroadcastTest)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/entries", entryController.CreateEntry)
	protected.GET("/entries", entryController.ListMyEntries)
	protected.DELETE("/entries/:id", entryController.DeleteEntry)

	protected.POST("/circles", circleController.CreateCircle)
	protected.GET("/circles", circleController.ListMyCircles)
	protected.POST("/circles/join", circleController.JoinCircle)
	protected.POST("/circles/:id/leave", circleController.LeaveCircle)
	protected.GET("/circles/:id/members", circleController.ListMembers)
	protected.GET("/circles/:id/feed", entryController.ListCircleFeed)
	protected.GET("/circles/:id/streak", streakController.GetCircleStreak)

	protected.GET("/streaks/me", streakController.GetMyStreak)

	protected.POST("/push/subscribe", pushController.Subscribe)
	protected.POST("/push/unsubscribe", pushController.Unsubscribe)
	protected.POST("/push/test", pushController.TestSend)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
