package metrics

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	requestsTotal *prometheus.CounterVec

	// EventsTotal counts processed webhook events by terminal outcome
	// (completed, download_error, policy_rejected, upload_error,
	// persist_error, ignored).
	EventsTotal *prometheus.CounterVec

	// UploadsTotal counts successfully relayed files by category.
	UploadsTotal *prometheus.CounterVec
)

// InitMetrics registers the collectors. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linedrive",
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status.",
			},
			[]string{"method", "status"},
		)
		EventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linedrive",
				Name:      "webhook_events_total",
				Help:      "Webhook events by terminal outcome.",
			},
			[]string{"outcome"},
		)
		UploadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linedrive",
				Name:      "uploads_total",
				Help:      "Relayed files by category.",
			},
			[]string{"file_type"},
		)
	})
}

// Middleware counts every request after the handler chain completes.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if requestsTotal != nil {
			requestsTotal.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		}
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// CountEvent records a webhook event outcome.
func CountEvent(outcome string) {
	if EventsTotal != nil {
		EventsTotal.WithLabelValues(outcome).Inc()
	}
}

// CountUpload records a successful relay for a category.
func CountUpload(fileType string) {
	if UploadsTotal != nil {
		UploadsTotal.WithLabelValues(fileType).Inc()
	}
}
