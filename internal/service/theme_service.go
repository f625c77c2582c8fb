package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"attendly/internal/model"
	"attendly/internal/repository"
	apperrors "attendly/pkg/errors"
)

// ThemeService 主题偏好业务接口
type ThemeService interface {
	Load(ctx context.Context) error
	Get() model.Theme
	IsLoading() bool
	Toggle(ctx context.Context) (model.Theme, error)
	Set(ctx context.Context, dark bool) (model.Theme, error)
}

type themeService struct {
	repo   *repository.Repository
	logger *zap.Logger

	mu      sync.RWMutex
	dark    bool
	loading bool
}

// NewThemeService 创建 ThemeService 实例，默认浅色主题
func NewThemeService(repo *repository.Repository, logger *zap.Logger) ThemeService {
	return &themeService{repo: repo, logger: logger, loading: true}
}

// Load 读取已保存的主题；读取失败时保持浅色主题并返回错误
func (s *themeService) Load(ctx context.Context) error {
	v, _, err := s.repo.KV.Get(ctx, repository.KeyTheme)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.logger.Error("读取主题偏好失败", zap.Error(err))
		return apperrors.NewPersistenceError("get", repository.KeyTheme, err)
	}
	s.dark = v == model.ThemeValueDark
	return nil
}

func (s *themeService) Get() model.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ThemeFor(s.dark)
}

func (s *themeService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *themeService) Toggle(ctx context.Context) (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, !s.dark)
}

func (s *themeService) Set(ctx context.Context, dark bool) (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, dark)
}

func (s *themeService) setLocked(ctx context.Context, dark bool) (model.Theme, error) {
	value := model.ThemeValueLight
	if dark {
		value = model.ThemeValueDark
	}
	if err := s.repo.KV.Set(ctx, repository.KeyTheme, value); err != nil {
		s.logger.Error("保存主题偏好失败", zap.String("theme", value), zap.Error(err))
		return model.ThemeFor(s.dark), fmt.Errorf("保存主题: %w",
			apperrors.NewPersistenceError("set", repository.KeyTheme, err))
	}
	s.dark = dark
	return model.ThemeFor(dark), nil
}
