package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var once sync.Once

var (
	// HTTP
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// 目录写操作，result: success | not_modified | invalid | error
	CatalogMutationsTotal *prometheus.CounterVec
	CatalogListDuration   prometheus.Histogram

	// 审计写入，result: success | failure
	AuditWritesTotal *prometheus.CounterVec

	// 详情缓存，result: hit | miss | error
	CacheRequestsTotal *prometheus.CounterVec

	// 熔断器
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息发布，result: success | failure
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标，可重复调用
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
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

		CatalogMutationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_mutations_total",
				Help: "图书写操作总数",
			},
			[]string{"op", "result"},
		)

		CatalogListDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_list_duration_seconds",
				Help:    "图书检索耗时（秒）",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		AuditWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_audit_writes_total",
				Help: "审计事件写入总数",
			},
			[]string{"result"},
		)

		CacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_cache_requests_total",
				Help: "图书详情缓存访问总数",
			},
			[]string{"result"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)
	})
}

// IncMutation 记录一次写操作结果
func IncMutation(op, result string) {
	InitMetrics()
	CatalogMutationsTotal.WithLabelValues(op, result).Inc()
}

// IncAuditWrite 记录一次审计写入结果
func IncAuditWrite(success bool) {
	InitMetrics()
	AuditWritesTotal.WithLabelValues(resultLabel(success)).Inc()
}

// IncCache 记录一次缓存访问
func IncCache(result string) {
	InitMetrics()
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// IncPublished 记录一次消息发布
func IncPublished(exchange, routingKey string, success bool) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
