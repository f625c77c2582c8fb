package repository

import "context"

// 键值存储中使用的键
const (
	KeySubjects   = "subjects"
	KeyAttendance = "attendance"
	KeyTheme      = "theme"
)

// KVRepository 键值存储访问接口
//
// 每个键对应一个完整的序列化值，写入即整体覆盖；键不存在时 ok=false 且 err=nil。
type KVRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	KV KVRepository
}

// NewRepository 创建 Repository 聚合，具体后端在启动时选定
func NewRepository(kv KVRepository) *Repository {
	return &Repository{KV: kv}
}
