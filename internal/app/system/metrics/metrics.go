// Package metrics provides Prometheus metrics for the file manager.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inclouds_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inclouds_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Storage tree operations
	storageOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inclouds_storage_operations_total",
			Help: "Total storage tree operations by outcome",
		},
		[]string{"operation", "status"},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inclouds_bytes_uploaded_total",
			Help: "Total bytes accepted by uploads",
		},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inclouds_bytes_downloaded_total",
			Help: "Total bytes served by view and download",
		},
	)

	storageUsedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inclouds_storage_used_bytes",
			Help: "Sum of file sizes under the storage root",
		},
	)

	volumeFreeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inclouds_volume_free_bytes",
			Help: "Free space on the volume holding the storage root",
		},
	)

	favoritesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inclouds_favorites",
			Help: "Number of stored favorites by kind",
		},
		[]string{"kind"},
	)

	// Background jobs
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inclouds_job_runs_total",
			Help: "Total background job runs by outcome",
		},
		[]string{"job", "status"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inclouds_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOperation records one storage tree or favorites operation.
func RecordOperation(operation string, err error) {
	storageOpsTotal.WithLabelValues(operation, status(err == nil)).Inc()
}

// RecordUpload records bytes written by a successful upload.
func RecordUpload(bytes int64) {
	bytesUploaded.Add(float64(bytes))
}

// RecordDownload records bytes served to a client.
func RecordDownload(bytes int64) {
	bytesDownloaded.Add(float64(bytes))
}

// SetStorageUsed sets the storage gauge.
func SetStorageUsed(bytes int64) {
	storageUsedBytes.Set(float64(bytes))
}

// SetVolumeFree sets the free space gauge.
func SetVolumeFree(bytes uint64) {
	volumeFreeBytes.Set(float64(bytes))
}

// SetFavorites sets the favorites gauge for a kind.
func SetFavorites(kind string, count int) {
	favoritesTotal.WithLabelValues(kind).Set(float64(count))
}

// RecordJob records the outcome of a background job run.
func RecordJob(name string, duration time.Duration, err error) {
	jobRunsTotal.WithLabelValues(name, status(err == nil)).Inc()
	jobDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// Middleware records request counts and durations labelled by the matched
// chi route pattern, which keeps label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		RecordHTTPRequest(r.Method, route, code, time.Since(start))
	})
}
