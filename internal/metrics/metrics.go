// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts ledger-affecting operations by kind
	// (insert, update, delete, import).
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioledger_mutations_total",
		Help: "Transaction mutations applied to the store.",
	}, []string{"op"})

	// ImportRowsTotal counts interchange rows by outcome (imported, skipped).
	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioledger_import_rows_total",
		Help: "Interchange rows processed during imports.",
	}, []string{"outcome"})

	// PersistFailures counts snapshot writes that failed after a mutation.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studioledger_persist_failures_total",
		Help: "Snapshot persistence attempts that returned an error.",
	})

	// PublishFailures counts mirror events that could not be published.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studioledger_publish_failures_total",
		Help: "Mutation events that failed to reach the broker.",
	})

	// ForecastCacheHits counts forecast requests served from cache.
	ForecastCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioledger_forecast_cache_total",
		Help: "Forecast lookups by cache outcome.",
	}, []string{"outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studioledger_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// HTTPMiddleware records request latency labelled by method and status.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpDuration.WithLabelValues(r.Method, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
