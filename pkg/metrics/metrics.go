// Package metrics 定义查询层的 Prometheus 指标。
//
// 指标注册在调用方提供的 Registerer 上，测试中使用独立的 Registry 避免重复注册。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 汇总查询层的全部指标。nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	CatalogItems    prometheus.Gauge
}

// New 在 reg 上注册指标，reg 为 nil 时使用 prometheus.DefaultRegisterer。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocoprec_requests_total",
				Help: "Total number of query requests by operation and outcome status",
			},
			[]string{"operation", "status"}, // status: ok / no_match / PRODUCT_NOT_FOUND / ...
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ocoprec_request_duration_seconds",
				Help:    "Duration of query requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocoprec_cache_lookups_total",
				Help: "Total number of result cache lookups by result",
			},
			[]string{"result"}, // "hit", "miss", "error"
		),
		CatalogItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ocoprec_catalog_items",
				Help: "Number of products in the loaded metadata map",
			},
		),
	}
}

// ObserveRequest 记录一次请求的结果与耗时。
func (m *Metrics) ObserveRequest(operation, status string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CacheLookup 记录一次缓存查询，result 为 hit / miss / error。
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetCatalogItems 更新元数据中的商品数。
func (m *Metrics) SetCatalogItems(n int) {
	if m == nil {
		return
	}
	m.CatalogItems.Set(float64(n))
}
