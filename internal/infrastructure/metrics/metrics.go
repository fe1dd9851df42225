package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Navi-App/internal/domain/model"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navi",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "navi",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// CommandsTotal 地図操作コマンドの結果
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navi",
		Subsystem: "navigation",
		Name:      "commands_total",
		Help:      "Navigation commands by command and result",
	}, []string{"command", "result"})

	// UpstreamDuration 外部サービス（ジオコーディング・経路）の呼び出し時間
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "navi",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of geocoding and routing calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"service"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "navi",
		Subsystem: "navigation",
		Name:      "active_sessions",
		Help:      "Map sessions held in memory",
	})
)

// ObserveCommand はコマンドの結果を記録する
func ObserveCommand(command string, err error) {
	CommandsTotal.WithLabelValues(command, ResultLabel(err)).Inc()
}

// ObserveUpstream は外部サービスの呼び出し時間を記録する
func ObserveUpstream(service string, start time.Time) {
	UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// ResultLabel はエラー種別をメトリクスのラベルに変換する
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, model.ErrMissingCurrentLocation):
		return "missing_location"
	case errors.Is(err, model.ErrDestinationNotFound):
		return "not_found"
	case errors.Is(err, model.ErrGeocodingService):
		return "geocoding_error"
	case errors.Is(err, model.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, model.ErrRoutingServiceUnavailable):
		return "routing_error"
	case errors.Is(err, model.ErrRequestSuperseded):
		return "superseded"
	default:
		return "error"
	}
}

// Middleware はginのリクエストメトリクスを記録する
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics エンドポイントのハンドラー
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
