package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultNamespace prefixes every metric name.
	DefaultNamespace = "scandeck"

	subsystemScan    = "scan"
	subsystemParse   = "parse"
	subsystemAPI     = "api"
	subsystemArchive = "archive"
)

// PrometheusMetrics holds the collectors on a private registry.
type PrometheusMetrics struct {
	// Scan metrics
	scansStarted  *prometheus.CounterVec
	scansFinished *prometheus.CounterVec
	scanDuration  *prometheus.HistogramVec
	activeScans   prometheus.Gauge

	// Result metrics
	parseDuration     prometheus.Histogram
	hostsParsed       prometheus.Counter
	fingerprintsFound prometheus.Counter

	// Adapter metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	// Archive metrics
	archiveQueries  *prometheus.CounterVec
	archiveDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates every collector under namespace and registers
// them, plus the Go and process collectors, on a fresh registry.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	pm := &PrometheusMetrics{registry: prometheus.NewRegistry()}

	pm.initScanMetrics(namespace)
	pm.initResultMetrics(namespace)
	pm.initAPIMetrics(namespace)
	pm.initArchiveMetrics(namespace)

	pm.registry.MustRegister(
		pm.scansStarted, pm.scansFinished, pm.scanDuration, pm.activeScans,
		pm.parseDuration, pm.hostsParsed, pm.fingerprintsFound,
		pm.httpRequests, pm.httpDuration,
		pm.archiveQueries, pm.archiveDuration,
	)
	pm.registry.MustRegister(collectors.NewGoCollector())
	pm.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

func (pm *PrometheusMetrics) initScanMetrics(namespace string) {
	pm.scansStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "started_total",
			Help:      "Total number of scans launched by profile",
		},
		[]string{"profile"},
	)

	pm.scansFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "finished_total",
			Help:      "Total number of scans that left the scanning state, by status",
		},
		[]string{"status"},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Wall time from launch until the scan finished",
			Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
		[]string{"status"},
	)

	pm.activeScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "active",
			Help:      "Number of tabs currently scanning",
		},
	)
}

func (pm *PrometheusMetrics) initResultMetrics(namespace string) {
	pm.parseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemParse,
			Name:      "duration_seconds",
			Help:      "Time spent decoding scan XML",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	pm.hostsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemParse,
			Name:      "hosts_total",
			Help:      "Total number of hosts read from scan results",
		},
	)

	pm.fingerprintsFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "unknown_fingerprints_total",
			Help:      "Total number of hosts reporting unrecognised fingerprints",
		},
	)
}

func (pm *PrometheusMetrics) initAPIMetrics(namespace string) {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "route"},
	)
}

func (pm *PrometheusMetrics) initArchiveMetrics(namespace string) {
	pm.archiveQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemArchive,
			Name:      "queries_total",
			Help:      "Total number of archive queries by operation and status",
		},
		[]string{"operation", "status"},
	)

	pm.archiveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemArchive,
			Name:      "query_duration_seconds",
			Help:      "Duration of archive queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)
}

// Registry returns the private registry.
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// Handler serves the registry in the Prometheus text format.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{Registry: pm.registry})
}

// WriteToTextfile dumps the registry for the node exporter textfile collector.
// One-shot CLI scans use this instead of an HTTP endpoint.
func (pm *PrometheusMetrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, pm.registry)
}

// ScanStarted implements Recorder.
func (pm *PrometheusMetrics) ScanStarted(profile string) {
	pm.scansStarted.WithLabelValues(profile).Inc()
}

// ScanFinished implements Recorder.
func (pm *PrometheusMetrics) ScanFinished(status string, duration time.Duration) {
	pm.scansFinished.WithLabelValues(status).Inc()
	pm.scanDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ParseCompleted implements Recorder.
func (pm *PrometheusMetrics) ParseCompleted(duration time.Duration, hosts int) {
	pm.parseDuration.Observe(duration.Seconds())
	pm.hostsParsed.Add(float64(hosts))
}

// FingerprintsFound implements Recorder.
func (pm *PrometheusMetrics) FingerprintsFound(count int) {
	pm.fingerprintsFound.Add(float64(count))
}

// SetActiveScans implements Recorder.
func (pm *PrometheusMetrics) SetActiveScans(count int) {
	pm.activeScans.Set(float64(count))
}

// HTTPRequest implements Recorder.
func (pm *PrometheusMetrics) HTTPRequest(method, route string, status int, duration time.Duration) {
	pm.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	pm.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ArchiveQuery implements Recorder.
func (pm *PrometheusMetrics) ArchiveQuery(operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	pm.archiveQueries.WithLabelValues(operation, status).Inc()
	pm.archiveDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

var (
	globalMu      sync.Mutex
	globalMetrics *PrometheusMetrics
)

// Global returns the process-wide metrics, creating them under the default
// namespace on first use.
func Global() *PrometheusMetrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewPrometheusMetrics(DefaultNamespace)
	}
	return globalMetrics
}

// InitGlobal replaces the process-wide metrics with a fresh set under
// namespace. Call it once at startup, before anything records.
func InitGlobal(namespace string) *PrometheusMetrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = NewPrometheusMetrics(namespace)
	return globalMetrics
}
