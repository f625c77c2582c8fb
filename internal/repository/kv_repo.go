package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendly/internal/model"
)

// kvRepo KVRepository 的 GORM 实现（PostgreSQL kv_entries 表）
type kvRepo struct {
	db *gorm.DB
}

// NewKVRepo 创建基于 GORM 的 KVRepository 实例
func NewKVRepo(db *gorm.DB) KVRepository {
	return &kvRepo{db: db}
}

func (r *kvRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *kvRepo) Set(ctx context.Context, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}
