package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/handler"
	"github.com/stemsi/dictant-backend/internal/logger"
	"github.com/stemsi/dictant-backend/internal/middleware"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Setting       *handler.SettingHandler
	Exam          *handler.ExamHandler
	Submission    *handler.SubmissionHandler
	Export        *handler.ExportHandler
	Monitor       *handler.MonitorHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// startLimiter throttles POST /student/start per client IP; nil disables it.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	startLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	// /start is the only public student route; everything after it carries
	// the attempt token it issues.
	start := []gin.HandlerFunc{}
	if startLimiter != nil {
		start = append(start, startLimiter.Middleware())
	}
	start = append(start, handlers.StudentPortal.StartSession)
	router.POST("/api/v1/student/start", start...)

	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/activity", handlers.StudentPortal.RecordActivity)
		studentAPI.POST("/submit", handlers.StudentPortal.Submit)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentJWT(authService))
	{
		ws.GET("/student/stream", handlers.WS.StudentStream)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", handlers.Setting.GetSettings)
			settingsGroup.PUT("", handlers.Setting.UpdateSettings)
		}
		adminAPI.POST("/master", handlers.Setting.UploadMaster)

		sessions := adminAPI.Group("/exam-sessions")
		{
			sessions.GET("", handlers.Exam.ListExamSessions)
			sessions.POST("", handlers.Exam.CreateExamSession)
			sessions.GET("/:id", handlers.Exam.GetExamSession)
			sessions.PATCH("/:id", handlers.Exam.UpdateExamSession)
			sessions.GET("/:id/roster", handlers.Exam.GetRoster)
			sessions.PUT("/:id/roster", handlers.Exam.ReplaceRoster)
		}

		adminAPI.GET("/submissions", handlers.Submission.ListSubmissions)
		adminAPI.GET("/submissions/:id", handlers.Submission.GetSubmission)

		adminAPI.GET("/active", handlers.Monitor.ListActive)
		adminAPI.GET("/monitor", handlers.Monitor.MonitorSSE)

		exports := adminAPI.Group("/export")
		{
			exports.GET("/submissions.csv", handlers.Export.SubmissionsCSV)
			exports.GET("/submissions.xlsx", handlers.Export.SubmissionsXLSX)
			exports.GET("/master.json", handlers.Export.MasterJSON)
			exports.GET("/master.xlsx", handlers.Export.MasterXLSX)
		}

		adminAPI.GET("/system", handlers.System.Runtime)
	}

	return router
}
