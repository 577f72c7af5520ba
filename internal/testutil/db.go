package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
)

// 测试辅助工具
// 每个测试使用独立的SQLite内存库，执行完整迁移，测试结束自动关闭

var dbSeq atomic.Int64

// NewDB 创建已迁移的内存数据库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return NewDBWithClock(t, inventory.SystemClock{})
}

// NewDBWithClock 创建已迁移的内存数据库，gorm自动时间戳取自clock
func NewDBWithClock(t testing.TB, clock inventory.Clock) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("%s_%d", sanitize(t.Name()), dbSeq.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	db, err := gormdb.OpenSQLite(dsn, logger.Silent, clock)
	require.NoError(t, err)
	require.NoError(t, gormdb.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
}

// FixedClock 可手动推进的时钟
type FixedClock struct {
	T time.Time
}

// Now 当前时间
func (c *FixedClock) Now() time.Time { return c.T }

// Advance 推进时间
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// WineDraft 构造合法的酒款输入
func WineDraft(code string, threshold int) inventory.WineDraft {
	return inventory.WineDraft{
		Name:              "Test " + code,
		Winery:            "Bodega Test",
		Vintage:           2020,
		Region:            "Mendoza",
		Varietal:          "malbec",
		Colour:            "red",
		Style:             "still",
		Code:              code,
		UnitPrice:         decimal.RequireFromString("25.00"),
		PurchasePrice:     decimal.RequireFromString("12.50"),
		MinStockThreshold: threshold,
	}
}
