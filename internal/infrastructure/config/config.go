package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// 运行环境
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// 数据库驱动
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、.env文件、环境变量和命令行参数覆盖
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lock     LockConfig     `mapstructure:"lock"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`      // dev | prod
	DataDir string `mapstructure:"data_dir"` // SQLite数据文件目录
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins string        `mapstructure:"allow_origins"` // 生产环境CORS白名单，逗号分隔
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite | mysql
	Path            string        `mapstructure:"path"`   // SQLite文件路径，为空时按环境生成
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

// SQLiteDSN 生成SQLite连接字符串，打开外键约束和忙等待
func (d DatabaseConfig) SQLiteDSN() string {
	return d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LockConfig 酒款级锁配置(仅Redis锁使用)
type LockConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	MaxRetries   int           `mapstructure:"max_retries"`
	// Redis连续失败BreakerFailures次后熔断，BreakerCooldown后再探测
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC，如 localhost:4317
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DemoConfig 演示数据开关(命令行 --demo / --with-transactions)
type DemoConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	WithTransactions bool `mapstructure:"with_transactions"`
}

// BindFlags 注册命令行参数
func BindFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "运行环境: dev | prod")
	fs.String("config", "", "配置文件路径")
	fs.Bool("demo", false, "数据库为空时写入演示酒款")
	fs.Bool("with-transactions", false, "演示数据同时写入出入库流水(需配合--demo)")
}

// Load 加载配置
// 优先级(高→低)：命令行参数 > 环境变量(WINESTOCK_*) > .env > 配置文件 > 默认值
// 配置文件可选：config/config.yaml，或根据环境加载config/config.<env>.yaml
func Load() (*Config, error) {
	return LoadWithFlags(pflag.CommandLine)
}

// LoadWithFlags 使用指定的FlagSet加载配置
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	// .env文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 环境变量绑定（如WINESTOCK_DATABASE_DRIVER → database.driver）
	v.SetEnvPrefix("WINESTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		bindFlag(v, fs, "app.env", "env")
		bindFlag(v, fs, "config", "config")
		bindFlag(v, fs, "demo.enabled", "demo")
		bindFlag(v, fs, "demo.with_transactions", "with-transactions")
	}

	// WINESTOCK_ENV 兼容：直接作为环境选择器
	env := v.GetString("app.env")
	if e := v.GetString("env"); e != "" && !isFlagChanged(fs, "env") {
		env = e
	}
	v.Set("app.env", env)

	if err := readConfigFile(v, env); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" {
		cfg.Database.Path = DefaultSQLitePath(cfg.App.DataDir, cfg.App.Env)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultSQLitePath 按环境选择数据文件
// dev → winestock_dev.db，prod → winestock.db
func DefaultSQLitePath(dataDir, env string) string {
	name := "winestock.db"
	if env != EnvProd {
		name = "winestock_dev.db"
	}
	return filepath.Join(dataDir, name)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "winestock")
	v.SetDefault("app.env", EnvDev)
	v.SetDefault("app.data_dir", "data")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.allow_origins", "")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "winestock")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("lock.ttl", 10*time.Second)
	v.SetDefault("lock.retry_backoff", 50*time.Millisecond)
	v.SetDefault("lock.max_retries", 100)
	v.SetDefault("lock.breaker_failures", 5)
	v.SetDefault("lock.breaker_cooldown", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.enable_caller", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "winestock")
	v.SetDefault("tracing.endpoint", "localhost:4317")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("demo.enabled", false)
	v.SetDefault("demo.with_transactions", false)
}

// readConfigFile 读取配置文件，找不到文件时只使用默认值
func readConfigFile(v *viper.Viper, env string) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		name := "config"
		if env != "" && env != EnvDev {
			name = "config." + env
		}
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	return nil
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, flag string) {
	if f := fs.Lookup(flag); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

func isFlagChanged(fs *pflag.FlagSet, name string) bool {
	return fs != nil && fs.Changed(name)
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.App.Env {
	case EnvDev, EnvProd:
	default:
		return fmt.Errorf("无效的运行环境: %q (可选 dev | prod)", cfg.App.Env)
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("SQLite数据文件路径不能为空")
		}
	case DriverMySQL:
		if cfg.Database.DBName == "" {
			return fmt.Errorf("MySQL数据库名不能为空")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", cfg.Database.Driver)
	}

	if cfg.Demo.WithTransactions && !cfg.Demo.Enabled {
		return fmt.Errorf("--with-transactions 需要同时开启 --demo")
	}

	return nil
}
