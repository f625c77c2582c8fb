package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"attendly/config"
	"attendly/internal/dto"
	"attendly/internal/model"
	apperrors "attendly/pkg/errors"
)

// ── 课表导入模块业务错误 ──

var (
	ErrICSParse = fmt.Errorf("%w: 课表文件解析失败", apperrors.ErrValidation)
	ErrICSFetch = errors.New("课表链接获取失败")
	ErrICSEmpty = fmt.Errorf("%w: 课表中没有可导入的课程", apperrors.ErrValidation)
)

// subjectPalette 导入课程时轮流使用的颜色
var subjectPalette = []string{
	"#E3F2FD", "#FCE4EC", "#E8F5E8", "#FFF3E0",
	"#F3E5F5", "#E0F2F1", "#FFF8E1", "#FFEBEE",
	"#E1F5FE", "#F9FBE7", "#FFFDE7", "#EDE7F6",
}

// TimetableService 课表导入业务接口
type TimetableService interface {
	ImportICS(ctx context.Context, r io.Reader) (*dto.TimetableImportResponse, error)
	ImportICSFromURL(ctx context.Context, url string) (*dto.TimetableImportResponse, error)
}

type timetableService struct {
	store     *AttendanceStore
	importCfg config.ImportConfig
	alertCfg  config.AlertConfig
	logger    *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(store *AttendanceStore, cfg *config.Config, logger *zap.Logger) TimetableService {
	return &timetableService{
		store:     store,
		importCfg: cfg.Import,
		alertCfg:  cfg.Alert,
		logger:    logger,
	}
}

func (s *timetableService) ImportICSFromURL(ctx context.Context, url string) (*dto.TimetableImportResponse, error) {
	body, err := FetchICSContent(ctx, url, s.importCfg.FetchTimeout, s.importCfg.MaxFileSize)
	if err != nil {
		s.logger.Warn("获取课表失败", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSFetch, err)
	}
	defer body.Close()
	return s.ImportICS(ctx, body)
}

// ImportICS 解析课表并为尚不存在的课程（名称不区分大小写）逐个调用 CreateSubject
func (s *timetableService) ImportICS(ctx context.Context, r io.Reader) (*dto.TimetableImportResponse, error) {
	drafts, err := ParseICS(r, s.alertCfg.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParse, err)
	}
	if len(drafts) == 0 {
		return nil, ErrICSEmpty
	}

	existing := make(map[string]bool)
	for _, sub := range s.store.ListSubjects() {
		existing[strings.ToLower(sub.Name)] = true
	}

	resp := &dto.TimetableImportResponse{
		Created: []model.Subject{},
		Skipped: []string{},
	}
	for i, d := range drafts {
		key := strings.ToLower(d.Name)
		if existing[key] {
			resp.Skipped = append(resp.Skipped, d.Name)
			continue
		}

		created, err := s.store.CreateSubject(ctx, &dto.CreateSubjectRequest{
			Name:           d.Name,
			Description:    d.Location,
			Color:          subjectPalette[i%len(subjectPalette)],
			WeeklySchedule: weekdayStrings(d.Days),
		})
		if err != nil {
			// 已创建的课程保留，返回错误由调用方提示
			s.logger.Error("导入课程失败", zap.String("name", d.Name), zap.Error(err))
			return resp, err
		}
		existing[key] = true
		resp.Created = append(resp.Created, *created)
	}

	s.logger.Info("课表导入完成",
		zap.Int("created", len(resp.Created)),
		zap.Int("skipped", len(resp.Skipped)),
	)
	return resp, nil
}
