package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/grades/calculate", handler.CalculateGrade)
		api.POST("/results/rows", handler.ResultRows)

		api.POST("/attendance/rate", handler.AttendanceRate)
		api.POST("/attendance/report", handler.AttendanceReport)
		api.POST("/attendance/sessions", handler.AttendanceSessions)
		api.POST("/attendance/sessions/validate", handler.ValidateSession)

		api.POST("/fees/status", handler.FeeStatus)
		api.POST("/fees/payment", handler.ApplyPayment)

		api.POST("/exams/status", handler.ExamStatus)
		api.POST("/exams/validate", handler.ValidateExam)

		api.POST("/reports/academic", handler.AcademicSummary)
		api.POST("/reports/financial", handler.FinancialSummary)
	}

	classes := api.Group("/classes/:classId")
	{
		classes.GET("/reports/academic", handler.ClassAcademic)
		classes.GET("/reports/financial", handler.ClassFinancial)
		classes.GET("/reports/attendance", handler.ClassAttendance)
		classes.GET("/reports/attendance.xlsx", handler.AttendanceWorkbook)
		classes.GET("/reports/results.xlsx", handler.ResultsWorkbook)

		classes.GET("/exams", handler.ClassExams)
		classes.POST("/exams/validate", handler.ValidateClassExam)

		classes.POST("/snapshots", handler.CreateSnapshot)
		classes.GET("/snapshots/latest", handler.LatestSnapshot)
		classes.POST("/digest", handler.SendDigest)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
