package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "allergy_checker"

// Metrics 服務監控指標；方法在 nil receiver 上為 no-op
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	activeRequests  prometheus.Gauge

	searches      *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	lookupLatency prometheus.Histogram
	adapterStatus *prometheus.GaugeVec
	sessions      prometheus.Gauge
}

// New 建立指標並註冊到獨立的 registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Number of active HTTP requests",
			},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Completed dish searches by outcome and source",
			},
			[]string{"outcome", "source"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_lookups_total",
				Help:      "External dish lookups by result",
			},
			[]string{"result"},
		),
		lookupLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_lookup_duration_seconds",
				Help:      "External dish lookup latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		adapterStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "adapter_status",
				Help:      "1 for the current external lookup adapter status, 0 otherwise",
			},
			[]string{"status"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Sessions held by the in-memory session store",
			},
		),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.requestCount,
		m.activeRequests,
		m.searches,
		m.lookups,
		m.lookupLatency,
		m.adapterStatus,
		m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler 回傳 /metrics 的 http.Handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 供測試讀取收集到的指標
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RequestStarted 記錄進行中的請求
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.activeRequests.Inc()
}

// RecordRequest 記錄請求結果
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	m.activeRequests.Dec()
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}

// RecordSearch 記錄一次完成的搜尋；source 為 catalog、external 或 none
func (m *Metrics) RecordSearch(outcome, source string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome, source).Inc()
}

// RecordLookup 記錄一次外部查詢
func (m *Metrics) RecordLookup(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
	m.lookupLatency.Observe(duration.Seconds())
}

// SetAdapterStatus 將目前狀態設為 1，其餘為 0
func (m *Metrics) SetAdapterStatus(current string, all ...string) {
	if m == nil {
		return
	}
	for _, s := range all {
		m.adapterStatus.WithLabelValues(s).Set(0)
	}
	m.adapterStatus.WithLabelValues(current).Set(1)
}

// SetSessions 設定目前會話數
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
