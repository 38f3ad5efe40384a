// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestRecorder はHTTPリクエストのメトリクス収集インターフェース。
// ミドルウェアから利用する。
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpErrors      *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	authDuration    prometheus.Histogram
	poolTotal       prometheus.Gauge
	poolIdle        prometheus.Gauge
	poolUsed        prometheus.Gauge
	poolWaitedTotal prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_http_requests_total",
			Help: "受信したHTTPリクエストの合計数",
		}, []string{"method", "route", "status"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_http_request_errors_total",
			Help: "エラーレスポンス（4xx/5xx）の合計数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipeman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		authDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipeman_auth_duration_seconds",
			Help:    "認証処理（bcrypt）の所要時間（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5},
		}),
		poolTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recipeman_db_pool_open_connections",
			Help: "DBコネクションプールのオープン接続数",
		}),
		poolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recipeman_db_pool_idle_connections",
			Help: "DBコネクションプールのアイドル接続数",
		}),
		poolUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recipeman_db_pool_in_use_connections",
			Help: "DBコネクションプールの使用中接続数",
		}),
		poolWaitedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recipeman_db_pool_wait_count_total",
			Help: "空き接続待ちが発生した累計回数。増加し続ける場合はプール枯渇の兆候",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpErrors,
		c.httpDuration,
		c.authDuration,
		c.poolTotal,
		c.poolIdle,
		c.poolUsed,
		c.poolWaitedTotal,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// 4xx/5xxはエラーカウンタにも記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	c.httpRequests.WithLabelValues(method, route, status).Inc()
	c.httpDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
	if statusCode >= 400 {
		c.httpErrors.WithLabelValues(method, route, status).Inc()
	}
}

// RecordAuthDuration は認証処理（bcrypt）の所要時間を記録する。
func (c *Collector) RecordAuthDuration(d time.Duration) {
	c.authDuration.Observe(d.Seconds())
}

// SetPoolStats はDBコネクションプールの統計をゲージに反映する。
func (c *Collector) SetPoolStats(stats sql.DBStats) {
	c.poolTotal.Set(float64(stats.OpenConnections))
	c.poolIdle.Set(float64(stats.Idle))
	c.poolUsed.Set(float64(stats.InUse))
	c.poolWaitedTotal.Set(float64(stats.WaitCount))
}

// CollectPoolStats はDBプール統計を定期的に収集するループを実行する。
// コンテキストのキャンセルで停止する。バックグラウンドgoroutineで実行すること。
func (c *Collector) CollectPoolStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.SetPoolStats(db.Stats())
		}
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
