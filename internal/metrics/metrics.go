package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docshelf_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docshelf_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docshelf_uploads_total",
		Help: "Uploads by document type and outcome.",
	}, []string{"type", "outcome"})

	replacementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docshelf_replacements_total",
		Help: "Uploads that replaced an existing document with the same name.",
	})

	orphanBlobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docshelf_orphan_blobs_total",
		Help: "Blobs written without a committed catalog row.",
	})

	blobRemovalFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docshelf_blob_removal_failures_total",
		Help: "Blob removals that failed and were skipped.",
	})
)

// InitMetrics registers collectors with the default registry. Safe to call
// more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			uploadsTotal,
			replacementsTotal,
			orphanBlobsTotal,
			blobRemovalFailuresTotal,
		)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Recorder feeds file-store events into the Prometheus collectors.
type Recorder struct{}

// NewRecorder returns a Recorder backed by the package collectors.
func NewRecorder() Recorder {
	InitMetrics()
	return Recorder{}
}

func (Recorder) UploadCompleted(fileType string) {
	uploadsTotal.WithLabelValues(fileType, "ok").Inc()
}

func (Recorder) UploadFailed(fileType, kind string) {
	uploadsTotal.WithLabelValues(fileType, kind).Inc()
}

func (Recorder) Replaced() {
	replacementsTotal.Inc()
}

func (Recorder) OrphanBlob() {
	orphanBlobsTotal.Inc()
}

func (Recorder) BlobRemovalFailed() {
	blobRemovalFailuresTotal.Inc()
}
