package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/winestock/internal/domain/inventory"
)

// txKey context中事务DB的key
type txKey struct{}

// TxManager 事务管理器
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

var _ inventory.UnitOfWork = (*TxManager)(nil)

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内的所有Repository操作都在同一事务中执行
// fn返回error时ROLLBACK,返回nil时COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    wine, err := wineRepo.LockByID(ctx, wineID)
//	    if err != nil {
//	        return err
//	    }
//	    if err := movementRepo.Append(ctx, m); err != nil {
//	        return err // 自动回滚
//	    }
//	    return wineRepo.ApplyStockDelta(ctx, wineID, m.Delta())
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.Transaction(func(inner *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, inner))
		})
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Repository的getDB会从context提取事务DB
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// SQLite单连接下，事务内的查询如果不走事务DB会一直等待连接
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
