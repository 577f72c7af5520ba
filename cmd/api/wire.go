//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/winestock/internal/application/catalog"
	"github.com/xiebiao/winestock/internal/application/ledger"
	"github.com/xiebiao/winestock/internal/application/report"
	"github.com/xiebiao/winestock/internal/application/seed"
	"github.com/xiebiao/winestock/internal/domain/inventory"
	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/winestock/internal/interface/http/handler"
	"github.com/xiebiao/winestock/internal/interface/http/router"
)

// infrastructureSet 数据库、锁、时钟
var infrastructureSet = wire.NewSet(
	provideDB,
	provideLocker,
	provideClock,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

// repositorySet 仓储和事务管理器
var repositorySet = wire.NewSet(
	gormdb.NewWineRepository,
	gormdb.NewMovementRepository,
	gormdb.NewShopRepository,
	gormdb.NewTxManager,
	wire.Bind(new(inventory.UnitOfWork), new(*gormdb.TxManager)),
)

// applicationSet 应用服务
var applicationSet = wire.NewSet(
	ledger.NewEngine,
	catalog.NewService,
	report.NewService,
	seed.NewSeeder,
	wire.Bind(new(report.MovementLister), new(*ledger.Engine)),
)

// handlerSet HTTP处理器和路由
var handlerSet = wire.NewSet(
	handler.NewWineHandler,
	handler.NewMovementHandler,
	handler.NewAlertHandler,
	handler.NewReportHandler,
	handler.NewShopHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装整个应用
// 返回的cleanup负责关闭数据库和Redis连接
func InitializeApp(cfg *config.Config, log *logrus.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
