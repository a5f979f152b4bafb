package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/registrar/pkg/campus"
)

// Namespace prefixes every metric name.
const Namespace = "registrar"

// DefaultBuckets are the histogram buckets for request and mutation latency.
var DefaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Collector records GraphQL request and store mutation metrics.
type Collector struct {
	registry *prometheus.Registry
	started  time.Time

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	graphqlErrors    *prometheus.CounterVec
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	runtime bool
	buckets []float64
}

// WithoutRuntime skips the Go runtime and process collectors.
func WithoutRuntime() Option {
	return func(o *options) { o.runtime = false }
}

// WithBuckets overrides DefaultBuckets.
func WithBuckets(buckets []float64) Option {
	return func(o *options) { o.buckets = buckets }
}

// New creates a Collector with its own registry.
func New(opts ...Option) *Collector {
	o := options{runtime: true, buckets: DefaultBuckets}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "graphql",
			Name:      "requests_total",
			Help:      "Total number of GraphQL HTTP requests",
		}, []string{"operation", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "graphql",
			Name:      "request_duration_seconds",
			Help:      "GraphQL request latency in seconds",
			Buckets:   o.buckets,
		}, []string{"operation"}),
		graphqlErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "graphql",
			Name:      "errors_total",
			Help:      "Total number of errors returned in GraphQL responses",
		}, []string{"operation"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Total number of applied store mutations",
		}, []string{"kind", "op"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "mutation_duration_seconds",
			Help:      "Store mutation latency in seconds",
			Buckets:   o.buckets,
		}, []string{"kind", "op"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of rejected store mutations",
		}, []string{"kind", "op"}),
	}

	c.registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.graphqlErrors,
		c.mutations,
		c.mutationDuration,
		c.storeErrors,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the collector was created",
		}, func() float64 { return time.Since(c.started).Seconds() }),
	)
	if o.runtime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest implements graphql.Recorder.
func (c *Collector) ObserveRequest(operationType, _ string, status, errorCount int, duration time.Duration) {
	if operationType == "" {
		operationType = "unknown"
	}
	c.requests.WithLabelValues(operationType, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(operationType).Observe(duration.Seconds())
	if errorCount > 0 {
		c.graphqlErrors.WithLabelValues(operationType).Add(float64(errorCount))
	}
}

// OnMutation implements campus.Observer.
func (c *Collector) OnMutation(kind, op, _ string, duration time.Duration) {
	kind = kindLabel(kind)
	c.mutations.WithLabelValues(kind, op).Inc()
	c.mutationDuration.WithLabelValues(kind, op).Observe(duration.Seconds())
}

// OnError implements campus.Observer.
func (c *Collector) OnError(kind, op string, _ error) {
	c.storeErrors.WithLabelValues(kindLabel(kind), op).Inc()
}

// StoreReader is the read side of a store, used for the size gauges.
type StoreReader interface {
	Students() []campus.Student
	Courses() []campus.Course
}

// TrackStore registers registrar_students and registrar_courses gauges that
// read their value from store at scrape time.
func (c *Collector) TrackStore(store StoreReader) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "students",
			Help:      "Number of students currently stored",
		}, func() float64 { return float64(len(store.Students())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "courses",
			Help:      "Number of courses currently stored",
		}, func() float64 { return float64(len(store.Courses())) }),
	}
	for _, g := range gauges {
		if err := c.registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}

func kindLabel(kind string) string {
	if kind == "" {
		return "data"
	}
	return strings.ToLower(kind)
}
