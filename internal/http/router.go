package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configures the Gin router with middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	assessmentH *AssessmentHandler,
	sessionH *SessionHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assessments := r.Group("/assessments")
	assessments.POST("", assessmentH.CreateAssessment)
	assessments.GET("", assessmentH.ListAssessments)
	assessments.POST("/migrate", assessmentH.MigrateAssessments)
	assessments.POST("/recover", assessmentH.RecoverAssessments)
	assessments.POST("/:id/upgrade", assessmentH.UpgradeAssessment)

	r.GET("/session", sessionH.GetSession)
	r.PUT("/session", sessionH.PutSession)
	r.DELETE("/session", sessionH.DeleteSession)

	r.GET("/catalog/questions", assessmentH.ListQuestions)

	return r
}

// zapLoggerMiddleware creates a simple request logging middleware.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
