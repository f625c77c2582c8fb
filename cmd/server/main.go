package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendly/config"
	"attendly/internal/api/handler"
	"attendly/internal/api/router"
	"attendly/internal/repository"
	"attendly/internal/service"
	"attendly/pkg/database"
	applogger "attendly/pkg/logger"
	"attendly/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 0. 加载 .env（可选）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 选择键值存储后端
	var (
		kv  repository.KVRepository
		db  *gorm.DB
		rdb *redis.Client
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		kv = repository.NewKVRepo(db)
	case config.StorageDriverRedis:
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		kv = repository.NewRedisKVRepo(rdb, cfg.Redis.KeyPrefix)
	default:
		logger.Warn("使用内存存储，进程退出后数据将丢失")
		kv = repository.NewMemoryKVRepo()
	}

	// 4. 加载持久化数据
	// 加载失败时不能以空状态继续运行，否则下一次写入会覆盖已有数据
	repo := repository.NewRepository(kv)
	store := service.NewAttendanceStore(repo, logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Hydrate(loadCtx); err != nil {
		cancelLoad()
		logger.Fatal("加载出勤数据失败", zap.Error(err))
	}

	// 5. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, store, logger)
	if err := svc.Theme.Load(loadCtx); err != nil {
		logger.Warn("读取主题偏好失败，使用浅色主题", zap.Error(err))
	}
	cancelLoad()
	h := handler.NewHandler(cfg, svc)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Import.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
