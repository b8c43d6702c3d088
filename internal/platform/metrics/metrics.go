package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Optimizations counts optimize calls by outcome (ok, invalid, error).
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_optimizations_total", Help: "Route optimizations by outcome."},
		[]string{"outcome"},
	)
	// OptimizationDuration tracks end-to-end optimize latency.
	OptimizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_optimization_duration_seconds", Help: "Route optimization duration in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
	)
	// SegmentResolutions counts matrix cells by where their value came from.
	SegmentResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_segment_resolutions_total", Help: "Segment resolutions by source."},
		[]string{"source"},
	)
	// AnnealingIterations records how many iterations each search ran.
	AnnealingIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_annealing_iterations", Help: "Simulated annealing iterations per search.", Buckets: prometheus.ExponentialBuckets(10, 4, 8)},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(OptimizationDuration)
		Registry.MustRegister(SegmentResolutions)
		Registry.MustRegister(AnnealingIterations)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
