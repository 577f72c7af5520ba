package gormdb

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/winestock/pkg/errors"
)

// migrationTable gormigrate记录已执行迁移的表
const migrationTable = "migrations"

// ErrSchemaOutdated 数据库结构版本与程序不一致
var ErrSchemaOutdated = apperrors.New(apperrors.ErrCodeSchemaOutdated, "数据库结构版本过旧，请先执行迁移")

// migrations 按顺序执行的结构迁移
// 已发布的迁移不允许修改，结构变更只能追加新的迁移
var migrations = []*gormigrate.Migration{
	{
		ID: "202406010001_create_wines",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&WineModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("wines")
		},
	},
	{
		ID: "202406010002_create_stock_movements",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&MovementModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("stock_movements")
		},
	},
	{
		ID: "202406010003_create_shops",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&ShopModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("shops")
		},
	},
}

// LatestSchemaVersion 当前程序要求的结构版本
var LatestSchemaVersion = migrations[len(migrations)-1].ID

func newMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	opts := *gormigrate.DefaultOptions
	opts.TableName = migrationTable
	return gormigrate.New(db, &opts, migrations)
}

// Migrate 执行所有未执行的迁移
func Migrate(db *gorm.DB) error {
	return newMigrator(db).Migrate()
}

// RollbackLast 回滚最近一次迁移
func RollbackLast(db *gorm.DB) error {
	return newMigrator(db).RollbackLast()
}

// CheckSchema 校验数据库已迁移到LatestSchemaVersion
// 未迁移或版本落后时返回ErrSchemaOutdated，调用方应拒绝启动
func CheckSchema(db *gorm.DB) error {
	if !db.Migrator().HasTable(migrationTable) {
		return ErrSchemaOutdated
	}

	var n int64
	if err := db.Table(migrationTable).Where("id = ?", LatestSchemaVersion).Count(&n).Error; err != nil {
		return fmt.Errorf("读取结构版本失败: %w", err)
	}
	if n == 0 {
		return ErrSchemaOutdated
	}
	return nil
}
