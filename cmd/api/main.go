package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	"github.com/xiebiao/winestock/pkg/response"
	"github.com/xiebiao/winestock/pkg/tracing"
)

// @title        Wine Stock API
// @version      1.0
// @description  单店葡萄酒库存账本：酒款目录、出入库流水、低库存提醒和报表
// @BasePath     /

// main 启动流程
// 配置 → 日志 → 链路追踪 → 依赖注入(数据库迁移和结构校验) → 演示数据 → HTTP服务 → 优雅关闭
func main() {
	// 1. 加载配置
	config.BindFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	logg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	response.SetLogger(logg)

	logg.WithFields(logrus.Fields{
		"env":    cfg.App.Env,
		"port":   cfg.Server.Port,
		"mode":   cfg.Server.Mode,
		"driver": cfg.Database.Driver,
		"redis":  cfg.Redis.Enabled,
	}).Info("配置加载成功")

	// run返回时清理已完成
	if err := run(cfg, logg); err != nil {
		logg.WithError(err).Error("服务异常退出")
		os.Exit(1)
	}
}

// run 组装并运行应用，返回前关闭数据库、Redis和链路追踪
func run(cfg *config.Config, logg *logrus.Logger) error {
	// 3. 链路追踪(可选)
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logg.WithError(err).Warn("关闭链路追踪失败")
			}
		}()
	}

	// 4. 组装应用，数据库结构版本不对时在这里失败
	app, cleanup, err := InitializeApp(cfg, logg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	// 5. 演示数据
	if cfg.Demo.Enabled {
		if _, err := app.Seeder.Seed(context.Background(), cfg.Demo.WithTransactions); err != nil {
			return fmt.Errorf("写入演示数据失败: %w", err)
		}
	}

	// 6. 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 7. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(srv, quit, logg)
}

// serve 运行HTTP服务直到收到退出信号或监听失败
// 收到信号时优雅关闭，监听失败时返回错误
func serve(srv *http.Server, quit <-chan os.Signal, logg logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logg.WithField("addr", srv.Addr).Info("HTTP服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP服务启动失败: %w", err)
	case <-quit:
	}

	logg.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.WithError(err).Error("HTTP服务强制关闭")
	}
	logg.Info("服务已关闭")
	return nil
}
