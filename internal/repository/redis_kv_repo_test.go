package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"attendly/config"
	"attendly/pkg/redis"
)

func TestRedisKVRepo_PrefixedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("连接 miniredis 失败: %v", err)
	}
	defer client.Close()

	repo := NewRedisKVRepo(client, "attendly:")
	ctx := context.Background()

	if err := repo.Set(ctx, KeyAttendance, "[]"); err != nil {
		t.Fatalf("Set 应成功: %v", err)
	}
	if got, _ := mr.Get("attendly:attendance"); got != "[]" {
		t.Errorf("期望写入带前缀的键，实际值=%q", got)
	}

	v, ok, err := repo.Get(ctx, KeyAttendance)
	if err != nil || !ok || v != "[]" {
		t.Errorf("期望读回 []，实际 v=%q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := repo.Get(ctx, KeySubjects); ok {
		t.Error("未写入的键应返回 ok=false")
	}
}
