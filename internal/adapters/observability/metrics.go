package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DatasetLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "dataset_loads_total", Help: "Listing table loads."},
		[]string{"source", "result"}, // result: ok|error
	)
	DatasetLoadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "dataset_load_duration_seconds",
			Help:    "Listing table load duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "estate", Name: "dataset_rows", Help: "Rows in the loaded listing table."},
	)
	FilteredRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "filtered_rows",
			Help:    "Rows left after applying a range selection.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve exposes reg on a dedicated listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, DatasetLoads, DatasetLoadLatency, DatasetRows, FilteredRows, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveLoad(source string, err error, dur time.Duration) {
	DatasetLoads.WithLabelValues(source, result(err)).Inc()
	DatasetLoadLatency.WithLabelValues(source).Observe(dur.Seconds())
}

func SetDatasetRows(n int) { DatasetRows.Set(float64(n)) }

func ObserveFiltered(n int) { FilteredRows.Observe(float64(n)) }

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
