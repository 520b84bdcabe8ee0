// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 購読受付の結果ラベル
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordSubscriptionAccepted()
	RecordSubscriptionRejected(field string)
	RecordSubscriptionFailed(reason string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	subscriptions *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_total",
			Help: "購読受付の結果別の合計数",
		}, []string{"outcome", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.subscriptions,
		c.httpStatus,
	)

	return c
}

// RecordSubscriptionAccepted は購読の受付成功を記録する。
func (c *Collector) RecordSubscriptionAccepted() {
	c.subscriptions.WithLabelValues(OutcomeAccepted, "").Inc()
}

// RecordSubscriptionRejected はバリデーションによる拒否を記録する。
func (c *Collector) RecordSubscriptionRejected(field string) {
	c.subscriptions.WithLabelValues(OutcomeRejected, field).Inc()
}

// RecordSubscriptionFailed はストレージ書き込みの失敗を記録する。
func (c *Collector) RecordSubscriptionFailed(reason string) {
	c.subscriptions.WithLabelValues(OutcomeFailed, reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordSubscriptionAccepted()       {}
func (NopCollector) RecordSubscriptionRejected(string) {}
func (NopCollector) RecordSubscriptionFailed(string)   {}
func (NopCollector) RecordHTTPStatus(int)              {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。アプリケーション用ルーターとは別のリスナーで公開する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
