package router

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/internal/interface/http/handler"
	"github.com/xiebiao/winestock/internal/interface/http/middleware"
	"github.com/xiebiao/winestock/pkg/metrics"
	"github.com/xiebiao/winestock/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Wine     *handler.WineHandler
	Movement *handler.MovementHandler
	Alert    *handler.AlertHandler
	Report   *handler.ReportHandler
	Shop     *handler.ShopHandler
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, log *logrus.Logger, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境不暴露Swagger
	if cfg.App.Env != config.EnvProd {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/reference", h.Shop.Reference)
		v1.GET("/shop", h.Shop.Get)
		v1.PUT("/shop", h.Shop.Update)

		wines := v1.Group("/wines")
		{
			wines.POST("", h.Wine.Create)
			wines.GET("", h.Wine.List)
			wines.GET("/:id", h.Wine.Get)
			wines.PUT("/:id", h.Wine.Update)
			wines.DELETE("/:id", h.Wine.Delete)
			wines.POST("/:id/retire", h.Wine.Retire)
			wines.GET("/:id/balance", h.Wine.Balance)
			wines.GET("/:id/movements", h.Wine.Movements)
			wines.GET("/:id/verify", h.Wine.Verify)
		}

		movements := v1.Group("/movements")
		{
			movements.POST("", h.Movement.Record)
			movements.GET("", h.Movement.List)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.GET("", h.Alert.List)
			alerts.GET("/below-threshold", h.Alert.BelowThreshold)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/movements", h.Report.Movements)
			reports.GET("/stock", h.Report.Stock)
		}
	}

	return r
}

// corsConfig 开发环境允许所有来源，生产环境只允许配置的来源
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if cfg.App.Env == config.EnvProd {
		c.AllowOrigins = splitAndTrim(cfg.Server.AllowOrigins)
		if len(c.AllowOrigins) == 0 {
			c.AllowOrigins = []string{"http://localhost"}
		}
	} else {
		c.AllowAllOrigins = true
	}
	c.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	c.AddAllowHeaders("Origin", "Content-Type", middleware.RequestIDHeader)
	c.AddExposeHeaders("Content-Length", "Content-Disposition", middleware.RequestIDHeader)
	return c
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
