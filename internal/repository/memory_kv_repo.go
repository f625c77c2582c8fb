package repository

import (
	"context"
	"sync"
)

// MemoryKVRepo 进程内键值存储（storage.driver=memory），重启后数据丢失
type MemoryKVRepo struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKVRepo 创建内存 KVRepository
func NewMemoryKVRepo() *MemoryKVRepo {
	return &MemoryKVRepo{data: make(map[string]string)}
}

func (r *MemoryKVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *MemoryKVRepo) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}
