package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/application/seed"
	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/winestock/pkg/keylock"
)

// App 启动所需的对象
type App struct {
	Router *gin.Engine
	Seeder *seed.Seeder
}

// provideDB 打开数据库，cleanup时关闭连接
func provideDB(cfg *config.Config, log *logrus.Logger, clock inventory.Clock) (*gorm.DB, func(), error) {
	db, err := gormdb.NewDB(cfg, log, clock)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideLocker 酒款级锁
// 开启Redis时使用分布式锁(多实例共享同一个MySQL)，否则使用进程内锁
func provideLocker(cfg *config.Config, log *logrus.Logger) (ledger.Locker, func(), error) {
	if !cfg.Redis.Enabled {
		return keylock.New(), func() {}, nil
	}

	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return redis.NewLocker(client, cfg, log), cleanup, nil
}

func provideClock() inventory.Clock {
	return inventory.SystemClock{}
}
