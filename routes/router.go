package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/controllers"
	"github.com/readrally/readrally/middleware"
	"github.com/readrally/readrally/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
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
	ginLogPath := cfg.GinPath
	// Use application log level as reference
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
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
	// Record request activity after each request
	r.Use(middleware.ActivityRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	groupController := controllers.NewGroupController(db)
	checkinController := controllers.NewCheckinController(db)
	rankingController := controllers.NewRankingController(db)
	messageController := controllers.NewMessageController(db)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/send-email-code", authController.SendEmailCode)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.POST("/forgot-password", authController.ForgotPassword)
	authGroup.POST("/reset-password", authController.ResetPassword)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/stats/checkins-today", statsController.GetCheckinsToday)
	api.GET("/config/app", configController.GetMeta)
	api.GET("/config/notice", configController.GetNotice)
	api.GET("/users/:id", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/groups", groupController.Create)
	protected.POST("/groups/join", groupController.Join)
	protected.GET("/groups", groupController.ListMine)
	protected.GET("/groups/:id", groupController.Get)
	protected.GET("/groups/:id/members", groupController.Members)
	protected.POST("/groups/:id/leave", groupController.Leave)
	protected.DELETE("/groups/:id/members/:memberId", groupController.RemoveMember)
	protected.POST("/groups/:id/invite-code", groupController.RegenerateInviteCode)
	protected.PUT("/users/me/active-group", groupController.SetActiveGroup)

	protected.POST("/groups/:id/checkins", checkinController.Create)
	protected.GET("/groups/:id/checkins", checkinController.History)
	protected.GET("/groups/:id/checkins/today", checkinController.TodayStatus)
	protected.GET("/groups/:id/score", checkinController.Score)
	protected.GET("/groups/:id/ranking", rankingController.Get)

	protected.POST("/groups/:id/messages", messageController.Send)
	protected.GET("/groups/:id/messages", messageController.List)
	protected.PUT("/groups/:id/messages/:messageId", messageController.Edit)
	protected.DELETE("/groups/:id/messages/:messageId", messageController.Delete)
	protected.PUT("/groups/:id/typing", messageController.Typing)
	protected.GET("/groups/:id/typing", messageController.TypingStatus)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
