package model

import "time"

// KVEntry 键值存储表，对应 kv_entries（storage.driver=postgres）
//
// 每个键保存一个完整的 JSON 数组，写入时整体覆盖。
type KVEntry struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"        json:"key"`
	Value     string    `gorm:"type:text;not null"                 json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_entries" }
