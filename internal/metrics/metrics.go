// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 豆知識パイプラインのサービス層から利用する。
type MetricsCollector interface {
	RecordCacheHit()
	RecordGenerated()
	RecordGenerationFailure(reason string)
	RecordGenerationLatency(duration time.Duration)
	RecordLogin(firstTime bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cacheHit          prometheus.Counter
	generated         prometheus.Counter
	generationFail    *prometheus.CounterVec
	generationLatency prometheus.Histogram
	logins            *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinefact_fact_cache_hit_total",
			Help: "キャッシュ済み豆知識が返された合計数",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinefact_fact_generated_total",
			Help: "新規生成された豆知識の合計数",
		}),
		generationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinefact_generation_fail_total",
			Help: "豆知識生成失敗の理由別合計数",
		}, []string{"reason"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinefact_generation_latency_seconds",
			Help:    "豆知識生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinefact_login_total",
			Help: "ログイン成功の初回/再訪別合計数",
		}, []string{"first_time"}),
	}

	reg.MustRegister(
		c.cacheHit,
		c.generated,
		c.generationFail,
		c.generationLatency,
		c.logins,
	)

	return c
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit() {
	c.cacheHit.Inc()
}

// RecordGenerated は新規生成を記録する。
func (c *Collector) RecordGenerated() {
	c.generated.Inc()
}

// RecordGenerationFailure は生成失敗を理由付きで記録する。
func (c *Collector) RecordGenerationFailure(reason string) {
	c.generationFail.WithLabelValues(reason).Inc()
}

// RecordGenerationLatency は生成のレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.generationLatency.Observe(duration.Seconds())
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin(firstTime bool) {
	label := "false"
	if firstTime {
		label = "true"
	}
	c.logins.WithLabelValues(label).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
