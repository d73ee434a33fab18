package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/handler"
	"github.com/quizdesk/quizdesk-backend/internal/middleware"
	"github.com/quizdesk/quizdesk-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Course        *handler.CourseHandler
	Question      *handler.QuestionHandler
	Quiz          *handler.QuizHandler
	Student       *handler.StudentHandler
	StudentPortal *handler.StudentPortalHandler
	AttemptStream *handler.AttemptStreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(verifier *middleware.Verifier, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the student surface (120 requests per minute per IP).
	studentLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Student Group ──────────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		studentLimiter.Middleware(),
		middleware.RequireStudent(verifier),
	)
	{
		studentAPI.GET("/quizzes", handlers.StudentPortal.Lobby)
		studentAPI.GET("/quizzes/:quiz_id/paper", handlers.StudentPortal.GetPaper)
		studentAPI.GET("/attempts", handlers.StudentPortal.MyAttempts)
		studentAPI.GET("/attempts/:attempt_id/review", handlers.StudentPortal.Review)
	}

	// ─── 2. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(verifier))
	{
		ws.GET("/student/quizzes/:quiz_id/attempt", handlers.AttemptStream.Stream)
	}

	// ─── 3. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(verifier))
	{
		// Course management
		adminAPI.GET("/courses", handlers.Course.GetAll)
		adminAPI.POST("/courses", handlers.Course.Create)
		adminAPI.GET("/courses/:id", handlers.Course.GetByID)
		adminAPI.PUT("/courses/:id", handlers.Course.Update)
		adminAPI.DELETE("/courses/:id", handlers.Course.Delete)

		// Question bank
		adminAPI.GET("/questions", handlers.Question.ListBank)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.GET("/questions/:id", handlers.Question.GetByID)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Quiz management
		adminAPI.GET("/quizzes", handlers.Quiz.GetAll)
		adminAPI.POST("/quizzes", handlers.Quiz.Create)
		adminAPI.GET("/quizzes/:id", handlers.Quiz.GetByID)
		adminAPI.PUT("/quizzes/:id", handlers.Quiz.Update)
		adminAPI.DELETE("/quizzes/:id", handlers.Quiz.Delete)

		// Quiz authoring (question order + sections)
		adminAPI.POST("/quizzes/:id/questions", handlers.Quiz.InsertQuestions)
		adminAPI.POST("/quizzes/:id/questions/random", handlers.Quiz.InsertRandom)
		adminAPI.DELETE("/quizzes/:id/questions/:question_id", handlers.Quiz.RemoveQuestion)
		adminAPI.PUT("/quizzes/:id/questions/:question_id/points", handlers.Quiz.SetQuestionPoints)
		adminAPI.POST("/quizzes/:id/sections", handlers.Quiz.AddSection)
		adminAPI.DELETE("/quizzes/:id/sections/:section_id", handlers.Quiz.RemoveSection)

		// Quiz results
		adminAPI.GET("/quizzes/:id/attempts", handlers.Quiz.ListAttempts)
		adminAPI.GET("/quizzes/:id/stats", handlers.Quiz.GetStats)

		// Roster management
		adminAPI.GET("/students", handlers.Student.GetAll)
		adminAPI.POST("/students", handlers.Student.Create)
		adminAPI.GET("/students/:id", handlers.Student.GetByID)
		adminAPI.PUT("/students/:id", handlers.Student.Update)
		adminAPI.DELETE("/students/:id", handlers.Student.Delete)
		adminAPI.GET("/students/:id/attempts", handlers.Student.ListAttempts)
	}

	return router
}
