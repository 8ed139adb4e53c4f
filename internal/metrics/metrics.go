// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginDenied()
	RecordPaymentCreated(paymentType string)
	RecordPaymentStatusUpdate(status string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginDenied     prometheus.Counter
	paymentsCreated *prometheus.CounterVec
	statusUpdates   *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubman_login_success_total",
			Help: "サインイン成功の合計数",
		}),
		loginDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubman_login_denied_total",
			Help: "許可リストによるサインイン拒否の合計数",
		}),
		paymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubman_payments_created_total",
			Help: "登録された支払いの種別ごとの合計数",
		}, []string{"type"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubman_payment_status_updates_total",
			Help: "支払い状態更新の状態ごとの合計数",
		}, []string{"status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubman_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginDenied,
		c.paymentsCreated,
		c.statusUpdates,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordLoginSuccess はサインイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginDenied は許可リストによるサインイン拒否を記録する。
func (c *Collector) RecordLoginDenied() {
	c.loginDenied.Inc()
}

// RecordPaymentCreated は支払い登録を記録する。
func (c *Collector) RecordPaymentCreated(paymentType string) {
	c.paymentsCreated.WithLabelValues(paymentType).Inc()
}

// RecordPaymentStatusUpdate は支払い状態の更新を記録する。
func (c *Collector) RecordPaymentStatusUpdate(status string) {
	c.statusUpdates.WithLabelValues(status).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

// Nop は何も記録しないMetricsCollector実装。テストで使用する。
type Nop struct{}

func (Nop) RecordLoginSuccess()                 {}
func (Nop) RecordLoginDenied()                  {}
func (Nop) RecordPaymentCreated(string)         {}
func (Nop) RecordPaymentStatusUpdate(string)    {}
func (Nop) RecordHTTPStatus(int)                {}
func (Nop) RecordRequestDuration(time.Duration) {}

var _ MetricsCollector = Nop{}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
