package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"attendly/config"
	"attendly/internal/model"
)

// NotificationService 提醒业务接口
//
// 订阅 AttendanceStore 的状态变更，缓存最近一次派生的作业列表与低出勤课程。
type NotificationService interface {
	// CheckForAlerts 基于 store 当前快照重新派生
	CheckForAlerts()
	GetAssignments() []model.Assignment
	// GetUpcomingDeadlines 今天起 days 天内（含首尾）未完成的作业，按截止日期升序
	GetUpcomingDeadlines(days int) []model.Assignment
	GetLowAttendanceSubjects() []string
	GetLowAttendanceStats() []model.SubjectStats
}

type notificationService struct {
	store  *AttendanceStore
	cfg    config.AlertConfig
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	mu            sync.RWMutex
	assignments   []model.Assignment
	lowAttendance []model.SubjectStats
}

// NewNotificationService 创建 NotificationService 并订阅 store
func NewNotificationService(store *AttendanceStore, cfg *config.AlertConfig, logger *zap.Logger) NotificationService {
	return newNotificationService(store, cfg, time.Now, logger)
}

func newNotificationService(store *AttendanceStore, cfg *config.AlertConfig, now func() time.Time, logger *zap.Logger) *notificationService {
	svc := &notificationService{
		store:         store,
		cfg:           *cfg,
		loc:           cfg.Location(),
		now:           now,
		logger:        logger,
		assignments:   []model.Assignment{},
		lowAttendance: []model.SubjectStats{},
	}
	store.Subscribe(svc.recompute)
	svc.CheckForAlerts()
	return svc
}

func (s *notificationService) CheckForAlerts() {
	s.recompute(s.store.Snapshot())
}

func (s *notificationService) recompute(subjects []model.Subject, records []model.AttendanceRecord) {
	low := FilterLowAttendance(BuildSubjectStats(subjects, records), s.cfg.Threshold)
	assignments := ExtractAssignments(records)

	s.mu.Lock()
	s.lowAttendance = low
	s.assignments = assignments
	s.mu.Unlock()

	s.logger.Debug("提醒已重新计算",
		zap.Int("low_attendance", len(low)),
		zap.Int("assignments", len(assignments)),
	)
}

func (s *notificationService) GetAssignments() []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Assignment{}, s.assignments...)
}

func (s *notificationService) GetUpcomingDeadlines(days int) []model.Assignment {
	if days < 0 {
		days = s.cfg.DefaultDays
	}
	s.mu.RLock()
	assignments := append([]model.Assignment{}, s.assignments...)
	s.mu.RUnlock()

	return UpcomingDeadlines(assignments, s.now().In(s.loc), days)
}

func (s *notificationService) GetLowAttendanceSubjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.lowAttendance))
	for _, st := range s.lowAttendance {
		ids = append(ids, st.ID)
	}
	return ids
}

func (s *notificationService) GetLowAttendanceStats() []model.SubjectStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SubjectStats{}, s.lowAttendance...)
}

// ── 作业派生 ──

// ExtractAssignments 从出勤记录派生作业：作业名非空且有截止日期
func ExtractAssignments(records []model.AttendanceRecord) []model.Assignment {
	out := []model.Assignment{}
	for _, r := range records {
		if strings.TrimSpace(r.Assignment) == "" || r.AssignmentDueDate == "" {
			continue
		}
		out = append(out, model.Assignment{
			ID:          r.ID + model.AssignmentIDSuffix,
			SubjectID:   r.SubjectID,
			Title:       r.Assignment,
			DueDate:     r.AssignmentDueDate,
			IsCompleted: false,
		})
	}
	return out
}

// UpcomingDeadlines 以 now 所在日期为起点按自然日比较，无法解析的截止日期跳过
func UpcomingDeadlines(assignments []model.Assignment, now time.Time, days int) []model.Assignment {
	loc := now.Location()
	today := dateOf(now)
	end := today.AddDate(0, 0, days)

	type dated struct {
		a   model.Assignment
		due time.Time
	}
	var hits []dated
	for _, a := range assignments {
		if a.IsCompleted {
			continue
		}
		due, ok := parseDueDate(a.DueDate, loc)
		if !ok {
			continue
		}
		if due.Before(today) || due.After(end) {
			continue
		}
		hits = append(hits, dated{a: a, due: due})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].due.Before(hits[j].due) })

	out := make([]model.Assignment, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.a)
	}
	return out
}

func parseDueDate(v string, loc *time.Location) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation(model.DateLayout, v, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return dateOf(t.In(loc)), true
	}
	return time.Time{}, false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
