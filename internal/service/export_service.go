package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendly/config"
	"attendly/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSubjects   = errors.New("暂无课程，无法导出")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 出勤统计导出为 Excel (.xlsx)，"统计" 与 "记录" 两个 Sheet
//   - 作业截止日期导出为 iCalendar (.ics)，每个作业一个全天事件
//   - 结果以 bytes.Buffer 返回，由 Handler 层设置下载响应头
type ExportService interface {
	ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error)
	ExportDeadlines(ctx context.Context, days int) (*bytes.Buffer, string, error)
}

type exportService struct {
	store        *AttendanceStore
	notification NotificationService
	cfg          config.AlertConfig
	now          func() time.Time
	logger       *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(store *AttendanceStore, notification NotificationService, cfg *config.AlertConfig, logger *zap.Logger) ExportService {
	return &exportService{
		store:        store,
		notification: notification,
		cfg:          *cfg,
		now:          time.Now,
		logger:       logger,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance 导出出勤统计为 Excel
// ═══════════════════════════════════════════════════════════
//
// Sheet "统计"：课程 | 上课日 | 总课次 | 出勤课次 | 出勤率 | 状态
// Sheet "记录"：课程 | 日期 | 状态 | 课次 | 备注 | 作业 | 截止日期

const (
	statsSheet   = "统计"
	recordsSheet = "记录"
)

var statusNames = map[model.AttendanceStatus]string{
	model.StatusPresent:   "出勤",
	model.StatusAbsent:    "缺勤",
	model.StatusCancelled: "停课",
}

func (s *exportService) ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error) {
	subjects, records := s.store.Snapshot()
	if len(subjects) == 0 {
		return nil, "", ErrExportNoSubjects
	}
	stats := BuildSubjectStats(subjects, records)
	overall := ComputeOverallStats(stats)

	names := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		names[sub.ID] = sub.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(statsSheet)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(recordsSheet); err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6200EE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	lowStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#FF5252"},
	})

	// ── 统计 ──
	writeRow(f, statsSheet, 1, []any{"课程", "上课日", "总课次", "出勤课次", "出勤率", "状态"})
	f.SetCellStyle(statsSheet, "A1", "F1", headerStyle)
	f.SetColWidth(statsSheet, "A", "A", 20)
	f.SetColWidth(statsSheet, "B", "B", 36)
	f.SetColWidth(statsSheet, "C", "F", 12)

	row := 2
	for _, st := range stats {
		state := "正常"
		if IsLowAttendance(st.SubjectAttendance, s.cfg.Threshold) {
			state = "偏低"
		}
		writeRow(f, statsSheet, row, []any{
			st.Name,
			strings.Join(st.WeeklySchedule, ", "),
			st.TotalClasses,
			st.PresentClasses,
			fmt.Sprintf("%d%%", st.Percentage),
			state,
		})
		if state == "偏低" {
			f.SetCellStyle(statsSheet, cell("A", row), cell("F", row), lowStyle)
		}
		row++
	}
	writeRow(f, statsSheet, row, []any{
		"合计", "", overall.TotalClasses, overall.PresentClasses, fmt.Sprintf("%d%%", overall.Percentage), "",
	})

	// ── 记录 ──
	writeRow(f, recordsSheet, 1, []any{"课程", "日期", "状态", "课次", "备注", "作业", "截止日期"})
	f.SetCellStyle(recordsSheet, "A1", "G1", headerStyle)
	f.SetColWidth(recordsSheet, "A", "A", 20)
	f.SetColWidth(recordsSheet, "B", "D", 12)
	f.SetColWidth(recordsSheet, "E", "F", 30)
	f.SetColWidth(recordsSheet, "G", "G", 14)

	row = 2
	for _, r := range records {
		status := statusNames[r.Status]
		if status == "" {
			status = string(r.Status)
		}
		writeRow(f, recordsSheet, row, []any{
			names[r.SubjectID], r.Date, status, r.ClassCount, r.Notes, r.Assignment, r.AssignmentDueDate,
		})
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("出勤统计_%s.xlsx", s.now().In(s.cfg.Location()).Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportDeadlines 导出即将截止的作业为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportDeadlines(ctx context.Context, days int) (*bytes.Buffer, string, error) {
	assignments := s.notification.GetUpcomingDeadlines(days)
	loc := s.cfg.Location()
	stamp := s.now().UTC()

	names := make(map[string]string)
	for _, sub := range s.store.ListSubjects() {
		names[sub.ID] = sub.Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//attendly//deadlines//CN")
	cal.SetXWRCalName("作业截止日期")

	for _, a := range assignments {
		due, ok := parseDueDate(a.DueDate, loc)
		if !ok {
			continue
		}
		evt := cal.AddEvent(a.ID + "@attendly")
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(due)
		evt.SetAllDayEndAt(due.AddDate(0, 0, 1))
		summary := a.Title
		if name := names[a.SubjectID]; name != "" {
			summary = fmt.Sprintf("[%s] %s", name, a.Title)
		}
		evt.SetSummary(summary)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "deadlines.ics", nil
}

// ── 辅助函数 ──

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, cell(col, row), v)
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
