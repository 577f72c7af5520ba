package gormdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 默认使用SQLite单文件(单店场景)，也支持MySQL
// 2. SQLite只开一个连接，事务天然串行，事务内所有查询必须走ctx里的事务DB
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 按配置执行迁移，然后校验结构版本，版本不对不允许启动
// 5. gorm自动填充的created_at/updated_at使用注入的时钟，与账本时间一致
func NewDB(cfg *config.Config, log *logrus.Logger, clock inventory.Clock) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err = openMySQL(cfg.Database, logLevel, clock)
	default:
		if err := ensureDir(cfg.Database.Path); err != nil {
			return nil, err
		}
		db, err = OpenSQLite(cfg.Database.SQLiteDSN(), logLevel, clock)
	}
	if err != nil {
		return nil, err
	}

	// SQL级别的链路追踪，未启用tracing时使用全局noop provider
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		log.WithError(err).Warn("安装otelgorm插件失败")
	}

	log.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"path":   cfg.Database.Path,
	}).Info("数据库连接成功")

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	if err := CheckSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLite 打开SQLite数据库
// dsn示例: data/winestock.db?_pragma=foreign_keys(1)
// 内存库: file:name?mode=memory&cache=shared&_pragma=foreign_keys(1)
func OpenSQLite(dsn string, logLevel logger.LogLevel, clock inventory.Clock) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(logLevel, clock))
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	// SQLite只允许一个写者，单连接避免database is locked
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	return db, nil
}

func openMySQL(cfg config.DatabaseConfig, logLevel logger.LogLevel, clock inventory.Clock) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig(logLevel, clock))
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	return db, nil
}

func gormConfig(logLevel logger.LogLevel, clock inventory.Clock) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        clock.Now,
	}
}

// ensureDir 创建SQLite文件所在目录
func ensureDir(path string) error {
	if path == "" || strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	return nil
}
