package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pokedex"

// Outcome labels for resolutions.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
)

// Metrics holds every instrument plus the registry that exports them.
type Metrics struct {
	registry *prometheus.Registry

	resolutions       *prometheus.CounterVec   // by rule and outcome
	errors            *prometheus.CounterVec   // by stage
	classifierLatency *prometheus.HistogramVec // by status
	catalogRecords    prometheus.Gauge
	catalogSkipped    prometheus.Gauge
	catalogReloads    *prometheus.CounterVec // by result
}

// New creates the instruments on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Classifier labels resolved against the catalog",
		}, []string{"rule", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identify",
			Name:      "errors_total",
			Help:      "Identification requests that failed",
		}, []string{"stage"}), // stage: input, classifier, session, history
		classifierLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "request_duration_seconds",
			Help:      "Classifier request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}), // status: ok, error
		catalogRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "records",
			Help:      "Records in the currently loaded catalog",
		}),
		catalogSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "skipped_records",
			Help:      "Malformed records skipped by the last catalog load",
		}),
		catalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reload attempts",
		}, []string{"result"}), // result: ok, error
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resolutions,
		m.errors,
		m.classifierLatency,
		m.catalogRecords,
		m.catalogSkipped,
		m.catalogReloads,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveResolution counts one resolved or unresolved label under rule.
func (m *Metrics) ObserveResolution(rule string, matched bool) {
	if m == nil {
		return
	}
	outcome := OutcomeUnmatched
	if matched {
		outcome = OutcomeMatched
	}
	m.resolutions.WithLabelValues(rule, outcome).Inc()
}

// ObserveError counts a failed identification at stage.
func (m *Metrics) ObserveError(stage string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(stage).Inc()
}

// ObserveClassifier records the duration of one classifier call.
func (m *Metrics) ObserveClassifier(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.classifierLatency.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveCatalogLoad records the outcome of a catalog (re)load.
func (m *Metrics) ObserveCatalogLoad(records, skipped int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.catalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.catalogReloads.WithLabelValues("ok").Inc()
	m.catalogRecords.Set(float64(records))
	m.catalogSkipped.Set(float64(skipped))
}
