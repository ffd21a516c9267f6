// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "civicledger"

// Metrics represents the set of metrics we gather for the web requests.
type Metrics struct {
	registry   *prometheus.Registry
	requests   prometheus.Counter
	errors     prometheus.Counter
	panics     prometheus.Counter
	goroutines prometheus.Gauge
}

// New constructs the request metrics along with a registry holding the Go
// runtime and process collectors. Extra collectors are registered as well.
func New(extra ...prometheus.Collector) (*Metrics, error) {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of web requests handled.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of web requests that returned an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of web requests that panicked.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Number of goroutines sampled every 100 requests.",
		}),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.errors,
		m.panics,
		m.goroutines,
	}

	for _, c := range append(cs, extra...) {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// Handler returns the handler that serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the registry for reading the metrics directly.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// AddRequests increments the request count.
func (m *Metrics) AddRequests() {
	m.requests.Inc()
}

// SampleGoroutines records the current number of goroutines.
func (m *Metrics) SampleGoroutines() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// AddErrors increments the error count.
func (m *Metrics) AddErrors() {
	m.errors.Inc()
}

// AddPanics increments the panic count.
func (m *Metrics) AddPanics() {
	m.panics.Inc()
}
