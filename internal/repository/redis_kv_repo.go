package repository

import (
	"context"

	"attendly/pkg/redis"
)

// redisKVRepo KVRepository 的 Redis 实现，键名加统一前缀
type redisKVRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisKVRepo 创建基于 Redis 的 KVRepository 实例
func NewRedisKVRepo(client *redis.Client, prefix string) KVRepository {
	return &redisKVRepo{client: client, prefix: prefix}
}

func (r *redisKVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return r.client.GetString(ctx, r.prefix+key)
}

func (r *redisKVRepo) Set(ctx context.Context, key, value string) error {
	return r.client.SetString(ctx, r.prefix+key, value)
}
