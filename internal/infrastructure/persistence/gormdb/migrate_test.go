package gormdb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/testutil"
)

func TestCheckSchema(t *testing.T) {
	t.Run("未迁移的库拒绝使用", func(t *testing.T) {
		db, err := gormdb.OpenSQLite("file:check_schema_empty?mode=memory&cache=shared", logger.Silent, inventory.SystemClock{})
		require.NoError(t, err)
		t.Cleanup(func() {
			sqlDB, _ := db.DB()
			_ = sqlDB.Close()
		})

		assert.ErrorIs(t, gormdb.CheckSchema(db), gormdb.ErrSchemaOutdated)
	})

	t.Run("迁移完成", func(t *testing.T) {
		db := testutil.NewDB(t)
		assert.NoError(t, gormdb.CheckSchema(db))
		assert.True(t, db.Migrator().HasTable("stock_movements"))
	})

	t.Run("版本落后", func(t *testing.T) {
		db := testutil.NewDB(t)
		require.NoError(t, gormdb.RollbackLast(db))
		assert.ErrorIs(t, gormdb.CheckSchema(db), gormdb.ErrSchemaOutdated)

		// 重新迁移后恢复
		require.NoError(t, gormdb.Migrate(db))
		assert.NoError(t, gormdb.CheckSchema(db))
	})
}
