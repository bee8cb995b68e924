// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Place書き込みの操作種別と結果を表すラベル値。
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordGeocodeLatency(duration time.Duration)
	RecordGeocodeFailure(reason string)
	RecordPlaceWrite(op, outcome string)
	RecordImageCleanupFailure()
	RecordImagesSwept(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	geocodeLatency prometheus.Histogram
	geocodeFail    *prometheus.CounterVec
	placeWrites    *prometheus.CounterVec
	cleanupFail    prometheus.Counter
	imagesSwept    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placeshare_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		geocodeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "placeshare_geocode_latency_seconds",
			Help:    "ジオコーディングAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		geocodeFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placeshare_geocode_failures_total",
			Help: "理由別のジオコーディング失敗数",
		}, []string{"reason"}),
		placeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placeshare_place_writes_total",
			Help: "操作と結果別のPlace書き込み数",
		}, []string{"op", "outcome"}),
		cleanupFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "placeshare_image_cleanup_failures_total",
			Help: "Place削除後の画像削除に失敗した数",
		}),
		imagesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "placeshare_images_swept_total",
			Help: "sweepコマンドで削除された参照されていない画像の数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.geocodeLatency,
		c.geocodeFail,
		c.placeWrites,
		c.cleanupFail,
		c.imagesSwept,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordGeocodeLatency はジオコーディングのレイテンシを記録する。
func (c *Collector) RecordGeocodeLatency(duration time.Duration) {
	c.geocodeLatency.Observe(duration.Seconds())
}

// RecordGeocodeFailure はジオコーディング失敗を記録する。
func (c *Collector) RecordGeocodeFailure(reason string) {
	c.geocodeFail.WithLabelValues(reason).Inc()
}

// RecordPlaceWrite はPlace書き込みの結果を記録する。
func (c *Collector) RecordPlaceWrite(op, outcome string) {
	c.placeWrites.WithLabelValues(op, outcome).Inc()
}

// RecordImageCleanupFailure は画像削除の失敗を記録する。
func (c *Collector) RecordImageCleanupFailure() {
	c.cleanupFail.Inc()
}

// RecordImagesSwept はsweepで削除された画像数を記録する。
func (c *Collector) RecordImagesSwept(count int) {
	c.imagesSwept.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。テストやCLIコマンドで使用する。
type Nop struct{}

func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordGeocodeLatency(time.Duration) {}
func (Nop) RecordGeocodeFailure(string) {}
func (Nop) RecordPlaceWrite(string, string) {}
func (Nop) RecordImageCleanupFailure() {}
func (Nop) RecordImagesSwept(int) {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
