package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendly/internal/dto"
	"attendly/internal/model"
	"attendly/internal/repository"
	apperrors "attendly/pkg/errors"
)

// ── 课程/出勤模块业务错误 ──

var (
	ErrSubjectNameRequired     = fmt.Errorf("%w: 课程名称不能为空", apperrors.ErrValidation)
	ErrScheduleRequired        = fmt.Errorf("%w: 每周上课日不能为空", apperrors.ErrValidation)
	ErrClassCountInvalid       = fmt.Errorf("%w: 课时数必须大于等于 1", apperrors.ErrValidation)
	ErrAttendanceFieldRequired = fmt.Errorf("%w: 出勤记录缺少必填字段", apperrors.ErrValidation)
	ErrSubjectNotFound         = fmt.Errorf("%w: 课程不存在", apperrors.ErrNotFound)
)

// StoreListener 状态变更回调，参数为变更后的快照副本
//
// 回调在 store 写锁内同步执行，不得回调 store 的任何方法。
type StoreListener func(subjects []model.Subject, records []model.AttendanceRecord)

// AttendanceService 课程与出勤业务接口
type AttendanceService interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*model.Subject, error)
	UpdateSubject(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*model.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
	SaveAttendance(ctx context.Context, req *dto.SaveAttendanceRequest) (*model.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id string) error

	ListSubjects() []model.Subject
	GetSubject(id string) (*model.Subject, error)
	ListAttendance(subjectID string) []model.AttendanceRecord
	GetSubjectAttendance(subjectID string) model.SubjectAttendance
	GetAttendanceForDate(subjectID, date string) (*model.AttendanceRecord, bool)
	SubjectStats() []model.SubjectStats
	OverallStats() model.OverallStats
	IsLoading() bool
}

// AttendanceStore 课程与出勤记录的内存状态容器
//
// 每次变更先将完整列表序列化写入键值存储，写入成功后才替换内存状态；
// 写入失败时内存状态保持不变。存储在重启时是权威数据源。
type AttendanceStore struct {
	mu       sync.RWMutex
	repo     *repository.Repository
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string

	subjects   []model.Subject
	attendance []model.AttendanceRecord
	loading    bool
	listeners  []StoreListener
}

var _ AttendanceService = (*AttendanceStore)(nil)

// NewAttendanceStore 创建空的 AttendanceStore，需调用 Hydrate 加载持久化数据
func NewAttendanceStore(repo *repository.Repository, logger *zap.Logger) *AttendanceStore {
	return &AttendanceStore{
		repo:       repo,
		logger:     logger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		subjects:   []model.Subject{},
		attendance: []model.AttendanceRecord{},
	}
}

// ────────────────────── Hydrate ──────────────────────

// Hydrate 启动时一次性从存储加载 subjects 与 attendance
func (s *AttendanceStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	subjects := []model.Subject{}
	if err := s.load(ctx, repository.KeySubjects, &subjects); err != nil {
		return err
	}
	records := []model.AttendanceRecord{}
	if err := s.load(ctx, repository.KeyAttendance, &records); err != nil {
		return err
	}

	if subjects == nil {
		subjects = []model.Subject{}
	}
	known := make(map[string]bool, len(subjects))
	for i := range subjects {
		known[subjects[i].ID] = true
		if !subjects[i].CreatedAt.IsZero() {
			continue
		}
		if ts, ok := model.TimestampFromLegacyID(subjects[i].ID); ok {
			subjects[i].CreatedAt = ts
		} else {
			s.logger.Warn("课程缺少可用的创建时间", zap.String("subject_id", subjects[i].ID))
		}
	}

	kept := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if known[r.SubjectID] {
			kept = append(kept, r)
		}
	}
	if dropped := len(records) - len(kept); dropped > 0 {
		s.logger.Warn("丢弃引用不存在课程的出勤记录", zap.Int("count", dropped))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = subjects
	s.attendance = kept
	s.notifyLocked()

	s.logger.Info("出勤数据加载完成",
		zap.Int("subjects", len(subjects)),
		zap.Int("records", len(kept)),
	)
	return nil
}

// ────────────────────── CreateSubject ──────────────────────

func (s *AttendanceStore) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*model.Subject, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.WeeklySchedule = uniqueDays(in.WeeklySchedule)
	if err := s.validateStruct(&in); err != nil {
		return nil, err
	}

	subject := model.Subject{
		ID:             s.newID(),
		Name:           in.Name,
		Description:    in.Description,
		Color:          in.Color,
		WeeklySchedule: in.WeeklySchedule,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Subject, 0, len(s.subjects)+1)
	next = append(next, s.subjects...)
	next = append(next, subject)

	if err := s.persist(ctx, repository.KeySubjects, next); err != nil {
		return nil, fmt.Errorf("创建课程: %w", err)
	}
	s.subjects = next
	s.notifyLocked()

	out := subject.Clone()
	return &out, nil
}

// ────────────────────── UpdateSubject ──────────────────────

func (s *AttendanceStore) UpdateSubject(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*model.Subject, error) {
	in := *req
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.WeeklySchedule != nil {
		in.WeeklySchedule = uniqueDays(in.WeeklySchedule)
	}
	if err := s.validateStruct(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.subjectIndexLocked(id)
	if idx < 0 {
		return nil, ErrSubjectNotFound
	}

	updated := s.subjects[idx].Clone()
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Color != nil {
		updated.Color = *in.Color
	}
	if in.WeeklySchedule != nil {
		updated.WeeklySchedule = in.WeeklySchedule
	}

	next := make([]model.Subject, len(s.subjects))
	copy(next, s.subjects)
	next[idx] = updated

	if err := s.persist(ctx, repository.KeySubjects, next); err != nil {
		return nil, fmt.Errorf("更新课程: %w", err)
	}
	s.subjects = next
	s.notifyLocked()

	out := updated.Clone()
	return &out, nil
}

// ────────────────────── DeleteSubject ──────────────────────

// DeleteSubject 删除课程并级联删除其出勤记录；课程不存在时静默返回
//
// 先写 attendance 再写 subjects：任何中断都不会在存储中留下孤儿记录。
func (s *AttendanceStore) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.subjectIndexLocked(id)
	if idx < 0 {
		return nil
	}

	nextSubjects := make([]model.Subject, 0, len(s.subjects)-1)
	nextSubjects = append(nextSubjects, s.subjects[:idx]...)
	nextSubjects = append(nextSubjects, s.subjects[idx+1:]...)

	nextAttendance := make([]model.AttendanceRecord, 0, len(s.attendance))
	for _, r := range s.attendance {
		if r.SubjectID != id {
			nextAttendance = append(nextAttendance, r)
		}
	}

	if err := s.persist(ctx, repository.KeyAttendance, nextAttendance); err != nil {
		return fmt.Errorf("删除课程: %w", err)
	}
	removed := len(s.attendance) - len(nextAttendance)
	s.attendance = nextAttendance

	if err := s.persist(ctx, repository.KeySubjects, nextSubjects); err != nil {
		// 出勤记录已落盘，内存与存储保持一致
		s.notifyLocked()
		return fmt.Errorf("删除课程: %w", err)
	}
	s.subjects = nextSubjects
	s.notifyLocked()

	s.logger.Info("课程已删除", zap.String("subject_id", id), zap.Int("removed_records", removed))
	return nil
}

// ────────────────────── SaveAttendance ──────────────────────

// SaveAttendance 按 (subjectId, date) 插入或合并出勤记录
func (s *AttendanceStore) SaveAttendance(ctx context.Context, req *dto.SaveAttendanceRequest) (*model.AttendanceRecord, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subjectIndexLocked(req.SubjectID) < 0 {
		return nil, ErrSubjectNotFound
	}

	next := make([]model.AttendanceRecord, len(s.attendance), len(s.attendance)+1)
	copy(next, s.attendance)

	var record model.AttendanceRecord
	if idx := s.recordIndexLocked(req.SubjectID, req.Date); idx >= 0 {
		record = next[idx]
		applyAttendance(&record, req)
		next[idx] = record
	} else {
		record = model.AttendanceRecord{
			ID:        s.newID(),
			SubjectID: req.SubjectID,
			Date:      req.Date,
		}
		applyAttendance(&record, req)
		next = append(next, record)
	}

	if err := s.persist(ctx, repository.KeyAttendance, next); err != nil {
		return nil, fmt.Errorf("保存出勤记录: %w", err)
	}
	s.attendance = next
	s.notifyLocked()

	return &record, nil
}

// ────────────────────── DeleteAttendance ──────────────────────

// DeleteAttendance 按 ID 删除出勤记录；不存在时静默返回
func (s *AttendanceStore) DeleteAttendance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.AttendanceRecord, 0, len(s.attendance))
	for _, r := range s.attendance {
		if r.ID != id {
			next = append(next, r)
		}
	}
	if len(next) == len(s.attendance) {
		return nil
	}

	if err := s.persist(ctx, repository.KeyAttendance, next); err != nil {
		return fmt.Errorf("删除出勤记录: %w", err)
	}
	s.attendance = next
	s.notifyLocked()
	return nil
}

// ────────────────────── 查询 ──────────────────────

func (s *AttendanceStore) ListSubjects() []model.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubjects(s.subjects)
}

func (s *AttendanceStore) GetSubject(id string) (*model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.subjectIndexLocked(id)
	if idx < 0 {
		return nil, ErrSubjectNotFound
	}
	out := s.subjects[idx].Clone()
	return &out, nil
}

// ListAttendance 返回某课程的全部记录（插入顺序）
func (s *AttendanceStore) ListAttendance(subjectID string) []model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.AttendanceRecord{}
	for _, r := range s.attendance {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out
}

func (s *AttendanceStore) GetSubjectAttendance(subjectID string) model.SubjectAttendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeSubjectAttendance(s.attendance, subjectID)
}

func (s *AttendanceStore) GetAttendanceForDate(subjectID, date string) (*model.AttendanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.recordIndexLocked(subjectID, date)
	if idx < 0 {
		return nil, false
	}
	out := s.attendance[idx]
	return &out, true
}

// SubjectStats 每门课程的出勤汇总（课程插入顺序）
func (s *AttendanceStore) SubjectStats() []model.SubjectStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BuildSubjectStats(s.subjects, s.attendance)
}

func (s *AttendanceStore) OverallStats() model.OverallStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeOverallStats(BuildSubjectStats(s.subjects, s.attendance))
}

func (s *AttendanceStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot 返回当前状态的副本
func (s *AttendanceStore) Snapshot() ([]model.Subject, []model.AttendanceRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubjects(s.subjects), append([]model.AttendanceRecord(nil), s.attendance...)
}

// Subscribe 注册状态变更回调
func (s *AttendanceStore) Subscribe(l StoreListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// ── 内部辅助方法 ──

func (s *AttendanceStore) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.repo.KV.Get(ctx, key)
	if err != nil {
		s.logger.Error("读取存储失败", zap.String("key", key), zap.Error(err))
		return apperrors.NewPersistenceError("get", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Error("解析存储数据失败", zap.String("key", key), zap.Error(err))
		return apperrors.NewPersistenceError("decode", key, err)
	}
	return nil
}

func (s *AttendanceStore) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.NewPersistenceError("encode", key, err)
	}
	if err := s.repo.KV.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("写入存储失败", zap.String("key", key), zap.Error(err))
		return apperrors.NewPersistenceError("set", key, err)
	}
	return nil
}

func (s *AttendanceStore) notifyLocked() {
	if len(s.listeners) == 0 {
		return
	}
	for _, l := range s.listeners {
		l(cloneSubjects(s.subjects), append([]model.AttendanceRecord(nil), s.attendance...))
	}
}

func (s *AttendanceStore) subjectIndexLocked(id string) int {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AttendanceStore) recordIndexLocked(subjectID, date string) int {
	for i := range s.attendance {
		if s.attendance[i].SubjectID == subjectID && s.attendance[i].Date == date {
			return i
		}
	}
	return -1
}

// validateStruct 将 validator 的字段错误映射为业务错误
func (s *AttendanceStore) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	field := verrs[0].Field()
	switch {
	case field == "Name":
		return ErrSubjectNameRequired
	case strings.HasPrefix(field, "WeeklySchedule"):
		return ErrScheduleRequired
	case field == "ClassCount":
		return ErrClassCountInvalid
	default:
		return fmt.Errorf("%w: %s", ErrAttendanceFieldRequired, field)
	}
}

func applyAttendance(r *model.AttendanceRecord, req *dto.SaveAttendanceRequest) {
	r.Status = req.Status
	r.ClassCount = req.ClassCount
	if req.Notes != nil {
		r.Notes = *req.Notes
	}
	if req.Assignment != nil {
		r.Assignment = *req.Assignment
	}
	if req.AssignmentDueDate != nil {
		r.AssignmentDueDate = *req.AssignmentDueDate
	}
}

func uniqueDays(days []string) []string {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func cloneSubjects(in []model.Subject) []model.Subject {
	out := make([]model.Subject, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
