// Package metrics 提供基于Prometheus的指标收集
//
// 指标分两类：
//   - HTTP指标: 请求数、耗时、处理中的请求数，由HTTP中间件记录
//   - 账本指标: 流水记录数、被拒绝的流水数、记账耗时、低库存酒款数，由账本引擎记录
//
// 命名规范:
//   - Counter以_total结尾
//   - Histogram以单位结尾(_seconds)
//   - 标签只使用有限取值(kind、reason、method、status)，不使用wine_id这类高基数字段
//
// 使用示例:
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 账本指标

	// MovementsRecordedTotal 成功记录的流水数（Counter）
	// 标签：kind（purchase/sale）
	MovementsRecordedTotal *prometheus.CounterVec

	// MovementsRejectedTotal 被拒绝的流水数（Counter）
	// 标签：reason（validation/not_found/retired/insufficient_stock/lock/storage）
	MovementsRejectedTotal *prometheus.CounterVec

	// MovementRecordDuration 一次记账的耗时，包含等锁时间（Histogram）
	MovementRecordDuration prometheus.Histogram

	// LowStockWines 最近一次查询时处于低库存的在售酒款数（Gauge）
	LowStockWines prometheus.Gauge

	// StockVerifyMismatchTotal 库存投影与流水不一致的次数（Counter）
	StockVerifyMismatchTotal prometheus.Counter
)

// InitMetrics 初始化所有Prometheus指标
// 使用promauto注册到默认Registry，重复调用只注册一次
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		MovementsRecordedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "winestock_movements_recorded_total",
				Help: "成功记录的出入库流水数",
			},
			[]string{"kind"},
		)

		MovementsRejectedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "winestock_movements_rejected_total",
				Help: "被拒绝的出入库流水数",
			},
			[]string{"reason"},
		)

		MovementRecordDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "winestock_movement_record_duration_seconds",
				Help: "记账耗时（秒）",
				// 单机SQLite事务通常在毫秒级
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		LowStockWines = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "winestock_low_stock_wines",
				Help: "低库存的在售酒款数",
			},
		)

		StockVerifyMismatchTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "winestock_stock_verify_mismatch_total",
				Help: "库存投影与流水合计不一致的次数",
			},
		)
	})
}

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
