package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"attendly/config"
	"attendly/internal/repository"
)

// ── Mock KVRepository ──

var errMockStorage = errors.New("mock storage failure")

type mockKVRepo struct {
	mu      sync.Mutex
	data    map[string]string
	failSet map[string]bool // 对指定键的 Set 返回错误
	failGet map[string]bool
	sets    []string // Set 调用顺序（键名）
}

func newMockKVRepo() *mockKVRepo {
	return &mockKVRepo{
		data:    make(map[string]string),
		failSet: make(map[string]bool),
		failGet: make(map[string]bool),
	}
}

func (m *mockKVRepo) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet[key] {
		return "", false, errMockStorage
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockKVRepo) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, key)
	if m.failSet[key] {
		return errMockStorage
	}
	m.data[key] = value
	return nil
}

func (m *mockKVRepo) setFail(key string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet[key] = fail
}

func (m *mockKVRepo) raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// ── 测试辅助 ──

// fixedNow 2024-03-10 09:00 UTC（星期日）
var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func testAlertConfig() *config.AlertConfig {
	return &config.AlertConfig{
		Threshold:     75,
		DefaultDays:   7,
		DashboardDays: 3,
		Timezone:      "UTC",
	}
}

// setupTestStore 创建基于 mock 存储的 store，ID 按序生成便于断言
func setupTestStore() (*AttendanceStore, *mockKVRepo) {
	kv := newMockKVRepo()
	store := NewAttendanceStore(repository.NewRepository(kv), zap.NewNop())
	seq := 0
	store.newID = func() string {
		seq++
		return "id-" + string(rune('a'+seq-1))
	}
	store.now = func() time.Time { return fixedNow }
	return store, kv
}
